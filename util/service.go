package util

import (
	"bvnet/util/log"

	"errors"
	"fmt"
	"sync/atomic"
)

var (
	ErrAlreadyStarted = errors.New("Already started")
	ErrAlreadyStopped = errors.New("Already stopped")
)

// Service defines a startable and stoppable object.
type Service interface {
	// Start the service.
	// If it's already started or stopped, will return an error.
	// If OnStart() returns an error, it's returned by Start()
	Start() error
	OnStart() error

	// Stop the service.
	// If it's already stopped, will return false.
	Stop() bool
	OnStop()

	// Reset the service.
	// Panics by default - must be overwritten to enable reset.
	Reset() error
	OnReset() error

	// Return true if the service is running
	IsRunning() bool

	// C4Quit returns a channel, which is closed once the service is stopped.
	C4Quit() <-chan struct{}

	// WaitForStop blocks until the service is stopped.
	WaitForStop()

	// String representation of the service
	String() string

	SetLogger(log.Logger)
}

// BaseService provides the common lifecycle plumbing for services.
// The concrete service embeds BaseService and overrides OnStart()
// and OnStop(), which are called by the (final) Start() and Stop().
type BaseService struct {
	Logger log.Logger
	name string
	started uint32 // atomic
	stopped uint32 // atomic
	c4quit chan struct{}

	// The concrete service
	impl Service
}

func (bs *BaseService) Init(logger log.Logger, name string, impl Service) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	bs.Logger = logger
	bs.name = name
	bs.c4quit = make(chan struct{})
	bs.impl = impl
}

// SetLogger implements Service by setting a logger.
func (bs *BaseService) SetLogger(l log.Logger) {
	bs.Logger = l
}

// Start implements Service by calling OnStart() (if defined).
// An error will be returned if the service is already started or stopped.
// Not thread safe to call multiple times than once.
func (bs *BaseService) Start() error {
	if atomic.CompareAndSwapUint32(&bs.started, 0, 1) {
		if atomic.LoadUint32(&bs.stopped) == 1 {
			bs.Logger.Error(fmt.Sprintf("Not starting %v -- already stopped", bs.name))
			return ErrAlreadyStopped
		}

		bs.Logger.Info(fmt.Sprintf("Starting %v", bs.name))
		err := bs.impl.OnStart()
		if err != nil {
			// revert flag
			atomic.StoreUint32(&bs.started, 0)
			return err
		}
		return nil
	}

	bs.Logger.Debug(fmt.Sprintf("Not starting %v -- already started", bs.name))
	return ErrAlreadyStarted
}

// OnStart implements Service by doing nothing.
// NOTE: Do not put anything in here,
// that way users don't need to call BaseService.OnStart()
func (bs *BaseService) OnStart() error {
	return nil
}

// Stop implements Service by calling OnStop() (if defined) and closing
// the quit channel.
func (bs *BaseService) Stop() bool {
	if atomic.CompareAndSwapUint32(&bs.stopped, 0, 1) {
		bs.Logger.Info(fmt.Sprintf("Stopping %v", bs.name))
		bs.impl.OnStop()
		close(bs.c4quit)
		return true
	}

	bs.Logger.Debug(fmt.Sprintf("Stopping %v (ignoring: already stopped)", bs.name))
	return false
}

// OnStop implements Service by doing nothing.
// NOTE: Do not put anything in here,
// that way users don't need to call BaseService.OnStop()
func (bs *BaseService) OnStop() {
}

// Reset implements Service by calling OnReset() callback (if defined).
// An error will be returned if the service is running.
func (bs *BaseService) Reset() error {
	if !atomic.CompareAndSwapUint32(&bs.stopped, 1, 0) {
		bs.Logger.Debug(fmt.Sprintf("Can't reset %v -- not stopped", bs.name))
		return fmt.Errorf("can't reset running service %s", bs.name)
	}

	// whether or not we've started, we can reset
	atomic.CompareAndSwapUint32(&bs.started, 1, 0)

	bs.c4quit = make(chan struct{})
	return bs.impl.OnReset()
}

// OnReset implements Service by panicking.
func (bs *BaseService) OnReset() error {
	panic("The service cannot be reset")
}

// IsRunning implements Service by returning true or false depending on the
// service's state.
func (bs *BaseService) IsRunning() bool {
	return atomic.LoadUint32(&bs.started) == 1 && atomic.LoadUint32(&bs.stopped) == 0
}

// WaitForStop blocks until the service is stopped.
func (bs *BaseService) WaitForStop() {
	<-bs.c4quit
}

// C4Quit implements Service by returning the quit channel.
func (bs *BaseService) C4Quit() <-chan struct{} {
	return bs.c4quit
}

// String implements Servce by returning a string representation of the service.
func (bs *BaseService) String() string {
	return bs.name
}
