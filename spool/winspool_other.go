//go:build !windows

package spool

// System is the native print spooler. It is only available on Windows;
// here every call fails with ErrNotSupported.
type System struct{}

// NewSystem returns the native spooler.
func NewSystem() Spooler { return System{} }

func (System) Queues() ([]Queue, error)                 { return nil, ErrNotSupported }
func (System) Open(string) (Handle, error)              { return 0, ErrNotSupported }
func (System) StartDoc(Handle, DocInfo) (uint32, error) { return 0, ErrNotSupported }
func (System) StartPage(Handle) error                   { return ErrNotSupported }
func (System) Write(Handle, []byte) (int, error)        { return 0, ErrNotSupported }
func (System) EndPage(Handle) error                     { return ErrNotSupported }
func (System) EndDoc(Handle) error                      { return ErrNotSupported }
func (System) Close(Handle) error                       { return ErrNotSupported }
func (System) Job(Handle, uint32) (JobInfo, error)      { return JobInfo{}, ErrNotSupported }
func (System) CancelJob(Handle, uint32) error           { return ErrNotSupported }
