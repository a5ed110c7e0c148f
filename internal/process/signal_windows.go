//go:build windows

package process

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"

	"github.com/loykin/svcctl/internal/control"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procFreeConsole           = kernel32.NewProc("FreeConsole")
	procAllocConsole          = kernel32.NewProc("AllocConsole")
	procAttachConsole         = kernel32.NewProc("AttachConsole")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

// TerminateBlocking reports how Terminate behaves: it polls for up to
// stopAttempts*stopPollInterval.
const TerminateBlocking = control.Undetermined

// consoleMu serializes Terminate calls: console attachment and the CTRL_C
// handler are process-wide state.
var consoleMu sync.Mutex

// Terminate asks pid to shut down by raising CTRL_C on its console.
//
// The calling process leaves its own console, attaches to the target's, and
// ignores CTRL_C locally while the event is raised. Each step is undone in
// reverse order on every return path, so the caller's console state is
// restored before Terminate returns. After each event stopped is consulted;
// Terminate gives up after stopAttempts events. Concurrent calls run one at a
// time.
func Terminate(pid int, stopped func() bool) error {
	if pid <= 0 {
		return fmt.Errorf("%w: invalid pid %d", control.ErrPidUnresolvable, pid)
	}

	consoleMu.Lock()
	defer consoleMu.Unlock()

	hadConsole := freeConsole() == nil
	defer func() {
		if hadConsole {
			_ = allocConsole()
		}
	}()

	if err := attachConsole(uint32(pid)); err != nil {
		return fmt.Errorf("%w: failed to attach to service console with error: %v", control.ErrConsoleAttach, err)
	}
	defer func() { _ = freeConsole() }()

	if err := setConsoleCtrlHandler(true); err != nil {
		return fmt.Errorf("%w: failed to disable local console handler with error: %v", control.ErrHandlerInstall, err)
	}
	defer func() { _ = setConsoleCtrlHandler(false) }()

	return interruptUntilStopped(raiseCtrlC, stopped, stopAttempts, stopPollInterval)
}

func raiseCtrlC() error { return windows.GenerateConsoleCtrlEvent(windows.CTRL_C_EVENT, 0) }

func freeConsole() error { return call(procFreeConsole) }

func allocConsole() error { return call(procAllocConsole) }

func attachConsole(pid uint32) error { return call(procAttachConsole, uintptr(pid)) }

// setConsoleCtrlHandler(true) makes this process ignore CTRL_C.
func setConsoleCtrlHandler(ignore bool) error {
	var add uintptr
	if ignore {
		add = 1
	}
	return call(procSetConsoleCtrlHandler, 0, add)
}

func call(p *windows.LazyProc, args ...uintptr) error {
	ret, _, err := p.Call(args...)
	if ret == 0 {
		return err
	}
	return nil
}
