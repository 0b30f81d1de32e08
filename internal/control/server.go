// Package control owns the live ControlState and the TCP line protocol
// that mutates it. A background goroutine accepts connections and reads
// newline-terminated commands; the render loop only ever reads a State
// snapshot, never touches the socket.
package control

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/piatra-institute/morviq/internal/dispatcher"
	"github.com/piatra-institute/morviq/internal/logging"
	"github.com/piatra-institute/morviq/pkg/core"
)

// Server owns a TCP listener and a Dispatcher routing TIMESTEP/QUALITY/
// BIOELECTRIC/CAMERA commands into a shared State.
type Server struct {
	state      *State
	dispatcher *dispatcher.Dispatcher
	log        zerolog.Logger
	onUpdate   func()

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

// NewServer builds a Server bound to state. onUpdate, if non-nil, is
// invoked after every successfully applied command.
func NewServer(log zerolog.Logger, state *State, onUpdate func()) (*Server, error) {
	d, err := dispatcher.New(logging.NewDispatcherLogger(log))
	if err != nil {
		return nil, fmt.Errorf("control: building dispatcher: %w", err)
	}

	s := &Server{state: state, dispatcher: d, log: log, onUpdate: onUpdate}
	d.Register("TIMESTEP", s.handleTimestep, dispatcher.Logged())
	d.Register("QUALITY", s.handleQuality, dispatcher.Logged())
	d.Register("BIOELECTRIC", s.handleBioelectric, dispatcher.Logged())
	d.Register("CAMERA", s.handleCamera, dispatcher.Logged())
	return s, nil
}

// Listen starts accepting connections on addr (e.g. "127.0.0.1:9090").
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("control: listening on %s: %w", addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.wg.Add(1)
	go s.acceptLoop(ln)
	return nil
}

// Close stops accepting new connections. In-flight reads observe EOF and
// their goroutines exit.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	err := ln.Close()
	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.handleLine(line)
	}
}

func (s *Server) handleLine(line string) {
	command, rest := line, ""
	if idx := strings.IndexByte(line, ' '); idx >= 0 {
		command, rest = line[:idx], line[idx+1:]
	}

	if !s.dispatcher.HasHandler(command) {
		s.log.Debug().Str("command", command).Msg("control: unknown command, ignored")
		return
	}

	event := dispatcher.Event{Command: command, Args: []string{rest}, Timestamp: time.Now()}
	if _, err := s.dispatcher.Dispatch(event); err != nil {
		s.log.Error().Err(err).Str("command", command).Msg("control: command failed")
		return
	}
	if s.onUpdate != nil {
		s.onUpdate()
	}
}

func (s *Server) handleTimestep(e dispatcher.Event) (any, error) {
	step, err := strconv.Atoi(strings.TrimSpace(e.Args[0]))
	if err != nil {
		return nil, fmt.Errorf("control: TIMESTEP: %w", err)
	}
	s.state.Update(func(cs *core.ControlState) { cs.TimeStep = step })
	return step, nil
}

func (s *Server) handleQuality(e dispatcher.Event) (any, error) {
	q, err := parseQuality(e.Args[0])
	if err != nil {
		return nil, err
	}
	s.state.Update(func(cs *core.ControlState) { cs.Quality = q })
	return q, nil
}

func (s *Server) handleBioelectric(e dispatcher.Event) (any, error) {
	text := e.Args[0]
	s.state.Update(func(cs *core.ControlState) { cs.BioParams = text })
	return text, nil
}

func (s *Server) handleCamera(e dispatcher.Event) (any, error) {
	cam, err := parseCameraCommand(e.Args[0])
	if err != nil {
		return nil, err
	}
	s.state.Update(func(cs *core.ControlState) {
		cs.Projection = cam.Projection
		cs.View = cam.View
		cs.Viewport = [2]int{cam.Width, cam.Height}
	})
	return cam, nil
}
