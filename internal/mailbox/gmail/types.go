package gmail

// Wire types for the Gmail REST API v1, limited to the fields this
// application reads.

type listResponse struct {
	Messages      []refResource `json:"messages"`
	NextPageToken string        `json:"nextPageToken"`
}

type refResource struct {
	ID string `json:"id"`
}

type messageResource struct {
	ID      string        `json:"id"`
	Payload *partResource `json:"payload"`
}

type partResource struct {
	MimeType string          `json:"mimeType"`
	Headers  []headerField   `json:"headers"`
	Body     *bodyResource   `json:"body"`
	Parts    []*partResource `json:"parts"`
}

type headerField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type bodyResource struct {
	Data string `json:"data"`
}

type modifyRequest struct {
	RemoveLabelIDs []string `json:"removeLabelIds,omitempty"`
	AddLabelIDs    []string `json:"addLabelIds,omitempty"`
}
