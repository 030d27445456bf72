package spool

// JobState is the lifecycle state of a submitted job.
type JobState int

const (
	JobSubmitted JobState = iota
	JobWriting
	JobCompleted
	JobFailed
	JobCancelled
)

func (s JobState) String() string {
	switch s {
	case JobSubmitted:
		return "submitted"
	case JobWriting:
		return "writing"
	case JobCompleted:
		return "completed"
	case JobFailed:
		return "failed"
	case JobCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Job is a document accepted by the spooler. ID is zero when Submit
// failed before the spooler assigned one.
type Job struct {
	ID         uint32
	Queue      Queue
	OutputPath string
	State      JobState
}

// Started reports whether the spooler created the job.
func (j Job) Started() bool { return j.ID > 0 }
