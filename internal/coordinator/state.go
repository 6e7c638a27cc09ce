package coordinator

// Status strings shown in the shared status slot.
const (
	StatusLoaded   = "document loaded, you can start chatting"
	StatusUploaded = "document uploaded, you can start chatting"
)

// Hints shown in place of an empty conversation.
const (
	HintNoDocument = "upload a document to start chatting"
	HintReady      = "you can start asking about your document"
)

// Source names the flow that last wrote to the shared slot.
type Source int

const (
	SourceNone Source = iota
	SourceUpload
	SourceChat
)

func (s Source) String() string {
	switch s {
	case SourceUpload:
		return "upload"
	case SourceChat:
		return "chat"
	default:
		return "none"
	}
}

// State is a snapshot of the single loading/error/status slot shared by the
// upload and chat surfaces.
type State struct {
	Loading   bool
	Source    Source
	Error     string
	Status    string
	SessionID string
}

// HasSession reports whether a session handle is available.
func (s State) HasSession() bool {
	return s.SessionID != ""
}

// Hint returns the placeholder for an empty conversation.
func (s State) Hint() string {
	if s.HasSession() {
		return HintReady
	}
	return HintNoDocument
}
