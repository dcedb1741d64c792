package stats

// Recorder captures the status and body size of one response. The gin
// middleware feeds it from the context writer after the handler chain ran.
type Recorder struct {
	status int
	size   int
}

func (r *Recorder) Record(status, size int) {
	r.status = status
	if size > 0 {
		r.size = size
	}
}

// Status returns the recorded HTTP status of the response
func (r *Recorder) Status() int {
	return r.status
}

// Size returns the recorded size of the response body
func (r *Recorder) Size() int {
	return r.size
}
