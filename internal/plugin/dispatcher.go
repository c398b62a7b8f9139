package plugin

import (
	"context"
	"log"
	"sync"
)

// Dispatcher delivers events to subscribed hooks in the background. At most
// limit hooks run at once; deliveries beyond that are dropped so a slow hook
// never stalls the frame loop.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	slots    chan struct{}
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher running at most limit hooks concurrently.
func NewDispatcher(manager *Manager, executor *Executor, limit int) *Dispatcher {
	if limit < 1 {
		limit = 1
	}
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		slots:    make(chan struct{}, limit),
	}
}

// Dispatch starts delivering req to every hook that handles its event and
// returns how many deliveries were started.
func (d *Dispatcher) Dispatch(req Request) int {
	started := 0
	for _, p := range d.manager.Subscribers(req.Event) {
		select {
		case d.slots <- struct{}{}:
		default:
			log.Printf("All plugin slots busy, dropping %s event for %s", req.Event, p.Manifest.Name)
			continue
		}

		started++
		d.wg.Add(1)
		go func(p *Plugin) {
			defer d.wg.Done()
			defer func() { <-d.slots }()
			d.run(p, &req)
		}(p)
	}
	return started
}

func (d *Dispatcher) run(p *Plugin, req *Request) {
	resp, err := d.executor.Execute(context.Background(), p, req)
	if err != nil {
		log.Printf("Plugin %s failed on %s: %v", p.Manifest.Name, req.Event, err)
		return
	}
	if !resp.Success {
		log.Printf("Plugin %s rejected %s: %s", p.Manifest.Name, req.Event, resp.Error)
	}
}

// Wait blocks until every started delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
