package session

// State is the session's view state. Exactly one value is current; the
// concrete types carry payload only where it is needed.
type State interface {
	Name() string
	state()
}

type Idle struct{}

type Uploading struct {
	Progress int
}

type Processing struct{}

type Completed struct {
	DownloadPath string
}

type Error struct {
	Message string
}

func (Idle) Name() string       { return "idle" }
func (Uploading) Name() string  { return "uploading" }
func (Processing) Name() string { return "processing" }
func (Completed) Name() string  { return "completed" }
func (Error) Name() string      { return "error" }

func (Idle) state()       {}
func (Uploading) state()  {}
func (Processing) state() {}
func (Completed) state()  {}
func (Error) state()      {}

const fallbackErrorText = "An error occurred"

// StatusText is the status line shown for state.
func StatusText(s State, hasFile bool) string {
	switch st := s.(type) {
	case Uploading:
		return "Uploading video..."
	case Processing:
		return "Processing video with AI detection..."
	case Completed:
		return "Processing complete!"
	case Error:
		if st.Message != "" {
			return st.Message
		}
		return fallbackErrorText
	default:
		if hasFile {
			return "Ready to upload"
		}
		return "Select a video file"
	}
}

// busy reports whether an upload attempt is in flight.
func busy(s State) bool {
	switch s.(type) {
	case Uploading, Processing:
		return true
	}
	return false
}
