package overlay

// Op is a draw command operation.
type Op string

const (
	OpCreate Op = "create"
	OpRemove Op = "remove"
)

// Command is one line operation for a remote chart to apply.
type Command struct {
	Op   Op     `json:"op"`
	ID   LineID `json:"id"`
	Line *Line  `json:"line,omitempty"`
}

// Recorder is a Drawer that queues commands instead of drawing, for
// clients that render the chart themselves.
type Recorder struct {
	next    LineID
	pending []Command
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Create queues a create command and returns a fresh ID.
func (r *Recorder) Create(line Line) LineID {
	r.next++
	l := line
	r.pending = append(r.pending, Command{Op: OpCreate, ID: r.next, Line: &l})
	return r.next
}

// Remove queues a remove command.
func (r *Recorder) Remove(id LineID) {
	r.pending = append(r.pending, Command{Op: OpRemove, ID: id})
}

// Flush returns and clears the queued commands.
func (r *Recorder) Flush() []Command {
	out := r.pending
	r.pending = nil
	if out == nil {
		out = []Command{}
	}
	return out
}
