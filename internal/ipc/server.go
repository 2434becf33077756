package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"mediagate/internal/logging"
)

// Controller is the daemon surface the RPC service fronts.
type Controller interface {
	Status(ctx context.Context) (StatusResponse, error)
	History(ctx context.Context, userID int64, limit int) ([]HistoryRecord, error)
	Sessions(ctx context.Context) ([]SessionInfo, error)
	Sweep(ctx context.Context) (SweepResponse, error)
}

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the control server at the given socket path.
func NewServer(ctx context.Context, path string, controller Controller, logger *slog.Logger) (*Server, error) {
	if controller == nil {
		return nil, errors.New("ipc server requires controller")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{controller: controller, ctx: ctx}
	if err := rpcServer.RegisterName("Mediagate", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logging.WithComponent(logger, "control"),
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is cancelled.
func (s *Server) Serve() {
	s.logger.Debug("control server listening", slog.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() error {
	s.cancel()
	err := s.listener.Close()
	s.wg.Wait()
	if removeErr := os.Remove(s.path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) && err == nil {
		err = removeErr
	}
	return err
}

type service struct {
	controller Controller
	ctx        context.Context
}

func (s *service) Status(_ *StatusRequest, reply *StatusResponse) error {
	status, err := s.controller.Status(s.ctx)
	if err != nil {
		return err
	}
	*reply = status
	return nil
}

func (s *service) History(args *HistoryRequest, reply *HistoryResponse) error {
	records, err := s.controller.History(s.ctx, args.UserID, args.Limit)
	if err != nil {
		return err
	}
	reply.Records = records
	return nil
}

func (s *service) Sessions(_ *SessionsRequest, reply *SessionsResponse) error {
	sessions, err := s.controller.Sessions(s.ctx)
	if err != nil {
		return err
	}
	reply.Sessions = sessions
	return nil
}

func (s *service) Sweep(_ *SweepRequest, reply *SweepResponse) error {
	result, err := s.controller.Sweep(s.ctx)
	if err != nil {
		return err
	}
	*reply = result
	return nil
}
