package socket

// envelope is the single frame type exchanged with the connector, one
// JSON object per line. Type selects which fields are meaningful.
type envelope struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	// Inbound events.
	UserID     int64    `json:"user_id,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Text       string   `json:"text,omitempty"`
	ButtonCode string   `json:"button_code,omitempty"`
	File       *fileRef `json:"file,omitempty"`

	// Outbound sends and retrievals.
	Options   []optionRef `json:"options,omitempty"`
	Path      string      `json:"path,omitempty"`
	Caption   string      `json:"caption,omitempty"`
	Handle    string      `json:"handle,omitempty"`
	DestPath  string      `json:"dest_path,omitempty"`
	MessageID string      `json:"message_id,omitempty"`

	// Results. MessageID doubles as the connector's reference to a sent
	// message, echoed back on send_text results so it can be edited later.
	OK    bool   `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

type fileRef struct {
	Handle    string `json:"handle"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
}

type optionRef struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

const (
	frameEvent        = "event"
	frameResult       = "result"
	frameSendText     = "send_text"
	frameEditText     = "edit_text"
	frameSendOptions  = "send_options"
	frameSendAudio    = "send_audio"
	frameSendVideo    = "send_video"
	frameSendDocument = "send_document"
	frameRetrieve     = "retrieve"
)
