//go:build windows

package spool

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	winspool = windows.NewLazySystemDLL("winspool.drv")

	procEnumPrintersW     = winspool.NewProc("EnumPrintersW")
	procOpenPrinterW      = winspool.NewProc("OpenPrinterW")
	procClosePrinter      = winspool.NewProc("ClosePrinter")
	procStartDocPrinterW  = winspool.NewProc("StartDocPrinterW")
	procStartPagePrinter  = winspool.NewProc("StartPagePrinter")
	procWritePrinter      = winspool.NewProc("WritePrinter")
	procEndPagePrinter    = winspool.NewProc("EndPagePrinter")
	procEndDocPrinter     = winspool.NewProc("EndDocPrinter")
	procGetJobW           = winspool.NewProc("GetJobW")
	procSetJobW           = winspool.NewProc("SetJobW")
	procGetPrinterDriverW = winspool.NewProc("GetPrinterDriverW")
)

const (
	printerEnumLocal       = 0x2
	printerEnumConnections = 0x4

	printerDriverXPS = 0x2 // DRIVER_INFO_8 dwPrinterDriverAttributes
	jobControlCancel = 3
)

type docInfo1 struct {
	docName    *uint16
	outputFile *uint16
	datatype   *uint16
}

type printerInfo2 struct {
	serverName         *uint16
	printerName        *uint16
	shareName          *uint16
	portName           *uint16
	driverName         *uint16
	comment            *uint16
	location           *uint16
	devMode            uintptr
	sepFile            *uint16
	printProcessor     *uint16
	datatype           *uint16
	parameters         *uint16
	securityDescriptor uintptr
	attributes         uint32
	priority           uint32
	defaultPriority    uint32
	startTime          uint32
	untilTime          uint32
	status             uint32
	jobs               uint32
	averagePPM         uint32
}

type jobInfo1 struct {
	jobID        uint32
	printerName  *uint16
	machineName  *uint16
	userName     *uint16
	document     *uint16
	datatype     *uint16
	statusText   *uint16
	status       uint32
	priority     uint32
	position     uint32
	totalPages   uint32
	pagesPrinted uint32
	submitted    windows.Systemtime
}

type driverInfo8 struct {
	version                  uint32
	name                     *uint16
	environment              *uint16
	driverPath               *uint16
	dataFile                 *uint16
	configFile               *uint16
	helpFile                 *uint16
	dependentFiles           *uint16
	monitorName              *uint16
	defaultDataType          *uint16
	previousNames            *uint16
	driverDate               windows.Filetime
	driverVersion            uint64
	mfgName                  *uint16
	oemURL                   *uint16
	hardwareID               *uint16
	provider                 *uint16
	printProcessor           *uint16
	vendorSetup              *uint16
	colorProfiles            *uint16
	infPath                  *uint16
	printerDriverAttributes  uint32
	coreDriverDependencies   *uint16
	minInboxDriverVerDate    windows.Filetime
	minInboxDriverVerVersion uint64
}

// System is the Windows print spooler (winspool.drv).
type System struct{}

// NewSystem returns the native spooler.
func NewSystem() Spooler { return System{} }

func (System) Queues() ([]Queue, error) {
	var needed, returned uint32
	flags := uintptr(printerEnumLocal | printerEnumConnections)

	r, _, err := procEnumPrintersW.Call(flags, 0, 2, 0, 0,
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&returned)))
	if r == 0 && !errors.Is(err, windows.ERROR_INSUFFICIENT_BUFFER) {
		return nil, lastError(err)
	}
	if needed == 0 {
		return nil, nil
	}

	buf := make([]byte, needed)
	r, _, err = procEnumPrintersW.Call(flags, 0, 2,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(needed),
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&returned)))
	if r == 0 {
		return nil, lastError(err)
	}

	infos := unsafe.Slice((*printerInfo2)(unsafe.Pointer(&buf[0])), returned)
	queues := make([]Queue, 0, returned)
	for _, pi := range infos {
		q := Queue{
			Name:       windows.UTF16PtrToString(pi.printerName),
			Driver:     windows.UTF16PtrToString(pi.driverName),
			Attributes: pi.attributes,
		}
		q.AcceptsPageDescription = driverAcceptsXPS(q.Name)
		queues = append(queues, q)
	}
	return queues, nil
}

// driverAcceptsXPS reports whether the queue's driver is an XPS driver.
// A queue whose driver cannot be queried is reported as not accepting.
func driverAcceptsXPS(printer string) bool {
	h, err := System{}.Open(printer)
	if err != nil {
		return false
	}
	defer System{}.Close(h)

	var needed uint32
	r, _, err := procGetPrinterDriverW.Call(uintptr(h), 0, 8, 0, 0, uintptr(unsafe.Pointer(&needed)))
	if r == 0 && !errors.Is(err, windows.ERROR_INSUFFICIENT_BUFFER) || needed == 0 {
		return false
	}
	buf := make([]byte, needed)
	r, _, _ = procGetPrinterDriverW.Call(uintptr(h), 0, 8,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(needed), uintptr(unsafe.Pointer(&needed)))
	if r == 0 {
		return false
	}
	di := (*driverInfo8)(unsafe.Pointer(&buf[0]))
	return di.printerDriverAttributes&printerDriverXPS != 0
}

func (System) Open(printer string) (Handle, error) {
	name, err := windows.UTF16PtrFromString(printer)
	if err != nil {
		return 0, err
	}
	var h windows.Handle
	r, _, err := procOpenPrinterW.Call(uintptr(unsafe.Pointer(name)), uintptr(unsafe.Pointer(&h)), 0)
	if r == 0 {
		return 0, lastError(err)
	}
	return Handle(h), nil
}

func (System) StartDoc(h Handle, info DocInfo) (uint32, error) {
	var di docInfo1
	var err error
	if di.docName, err = windows.UTF16PtrFromString(info.Name); err != nil {
		return 0, err
	}
	if info.OutputFile != "" {
		if di.outputFile, err = windows.UTF16PtrFromString(info.OutputFile); err != nil {
			return 0, err
		}
	}
	if di.datatype, err = windows.UTF16PtrFromString(info.Datatype); err != nil {
		return 0, err
	}

	r, _, err := procStartDocPrinterW.Call(uintptr(h), 1, uintptr(unsafe.Pointer(&di)))
	if r == 0 {
		return 0, lastError(err)
	}
	return uint32(r), nil
}

func (System) StartPage(h Handle) error {
	return boolCall(procStartPagePrinter, uintptr(h))
}

func (System) Write(h Handle, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var written uint32
	r, _, err := procWritePrinter.Call(uintptr(h),
		uintptr(unsafe.Pointer(&p[0])), uintptr(len(p)), uintptr(unsafe.Pointer(&written)))
	if r == 0 {
		return int(written), lastError(err)
	}
	return int(written), nil
}

func (System) EndPage(h Handle) error {
	return boolCall(procEndPagePrinter, uintptr(h))
}

func (System) EndDoc(h Handle) error {
	return boolCall(procEndDocPrinter, uintptr(h))
}

func (System) Close(h Handle) error {
	return boolCall(procClosePrinter, uintptr(h))
}

func (System) Job(h Handle, id uint32) (JobInfo, error) {
	var needed uint32
	r, _, err := procGetJobW.Call(uintptr(h), uintptr(id), 1, 0, 0, uintptr(unsafe.Pointer(&needed)))
	if r == 0 && !errors.Is(err, windows.ERROR_INSUFFICIENT_BUFFER) {
		return JobInfo{}, jobError(err)
	}
	if needed == 0 {
		return JobInfo{}, ErrJobNotFound
	}

	buf := make([]byte, needed)
	r, _, err = procGetJobW.Call(uintptr(h), uintptr(id), 1,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(needed), uintptr(unsafe.Pointer(&needed)))
	if r == 0 {
		return JobInfo{}, jobError(err)
	}

	ji := (*jobInfo1)(unsafe.Pointer(&buf[0]))
	return JobInfo{
		ID:           ji.jobID,
		Document:     windows.UTF16PtrToString(ji.document),
		Status:       JobStatus(ji.status),
		StatusText:   windows.UTF16PtrToString(ji.statusText),
		TotalPages:   ji.totalPages,
		PagesPrinted: ji.pagesPrinted,
	}, nil
}

// jobError maps ERROR_INVALID_PARAMETER, which GetJob returns for an
// unknown job id, to ErrJobNotFound.
func jobError(err error) error {
	err = lastError(err)
	if errors.Is(err, windows.ERROR_INVALID_PARAMETER) {
		return ErrJobNotFound
	}
	return err
}

func (System) CancelJob(h Handle, id uint32) error {
	r, _, err := procSetJobW.Call(uintptr(h), uintptr(id), 0, 0, jobControlCancel)
	if r == 0 {
		return jobError(err)
	}
	return nil
}

func boolCall(proc *windows.LazyProc, args ...uintptr) error {
	r, _, err := proc.Call(args...)
	if r == 0 {
		return lastError(err)
	}
	return nil
}
