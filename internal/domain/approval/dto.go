package approval

type QueueResponse struct {
	Items []Item `json:"items"`
	Total int64  `json:"total"`
}

// RejectRequest takes either a free reason or selected common reasons
// plus a comment.
type RejectRequest struct {
	Reason  string   `json:"reason"`
	Reasons []string `json:"reasons"`
	Comment string   `json:"comment"`
}

func (r RejectRequest) Compose() string {
	if len(r.Reasons) == 0 && r.Comment == "" {
		return ComposeReason(nil, r.Reason)
	}
	return ComposeReason(r.Reasons, r.Comment)
}

type DownloadsResponse struct {
	URLs []string `json:"urls"`
}
