package export

import "errors"

var ErrNoJobs = errors.New("no jobs selected")
