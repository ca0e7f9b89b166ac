package iso8583

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alovak/cardcheck/internal/cardcheck"
	"github.com/alovak/cardcheck/internal/cardgen"
	"github.com/alovak/cardcheck/internal/expiry"
	"github.com/alovak/cardcheck/validator/models"
	"github.com/moov-io/iso8583"
	connection "github.com/moov-io/iso8583-connection"
	"github.com/moov-io/iso8583-connection/server"
	"golang.org/x/exp/slog"
)

// Verifier checks one card number with an optional YYMM expiry.
type Verifier interface {
	Verify(ctx context.Context, number, yymm string, src models.Source) (*models.CheckResult, error)
}

// Server answers 0100 verification requests and 0800 echo requests.
type Server struct {
	Addr string

	logger   *slog.Logger
	verifier Verifier
	server   *server.Server
	timeout  time.Duration
}

func NewServer(logger *slog.Logger, addr string, verifier Verifier) *Server {
	return &Server{
		Addr:     addr,
		logger:   logger.With(slog.String("component", "iso8583")),
		verifier: verifier,
		timeout:  5 * time.Second,
	}
}

func (s *Server) Start() error {
	s.server = server.New(Spec, ReadMessageLength, WriteMessageLength, connection.InboundMessageHandler(s.handleMessage))

	if err := s.server.Start(s.Addr); err != nil {
		return fmt.Errorf("starting iso8583 server: %w", err)
	}
	s.Addr = s.server.Addr
	s.logger.Info("iso8583 server started", slog.String("addr", s.Addr))

	return nil
}

func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	s.server.Close()
	s.logger.Info("iso8583 server stopped")
	return nil
}

func (s *Server) handleMessage(c *connection.Connection, message *iso8583.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	response, err := s.respond(ctx, message)
	if err != nil {
		s.logger.Error("handling message", "err", err)
		return
	}
	if response == nil {
		return
	}
	if err := c.Reply(response); err != nil {
		s.logger.Error("replying to message", "err", err)
	}
}

// respond builds the reply for message; nil means nothing is sent back.
func (s *Server) respond(ctx context.Context, message *iso8583.Message) (*iso8583.Message, error) {
	mti, err := message.GetMTI()
	if err != nil {
		return nil, fmt.Errorf("getting mti: %w", err)
	}

	switch mti {
	case "0100":
		return s.verify(ctx, message)
	case "0800":
		response := iso8583.NewMessage(Spec)
		response.MTI("0810")
		if err := copyFields(message, response, 7, 11); err != nil {
			return nil, err
		}
		if err := response.Field(39, CodeApproved); err != nil {
			return nil, fmt.Errorf("setting response code: %w", err)
		}
		return response, nil
	default:
		s.logger.Info("unsupported message type", slog.String("mti", mti))
		return nil, nil
	}
}

func (s *Server) verify(ctx context.Context, message *iso8583.Message) (*iso8583.Message, error) {
	pan := getString(message, 2)
	yymm := getString(message, 14)
	stan := getString(message, 11)

	response := iso8583.NewMessage(Spec)
	response.MTI("0110")
	if err := copyFields(message, response, 2, 3, 7, 11, 14); err != nil {
		return nil, err
	}

	code, cardType := CodeApproved, ""
	res, err := s.verifier.Verify(ctx, pan, yymm, models.SourceISO8583)
	switch {
	case errors.Is(err, cardcheck.ErrMalformedInput), errors.Is(err, expiry.ErrInvalid):
		code = CodeFormatError
	case err != nil:
		s.logger.Error("verifying card", slog.String("stan", stan), "err", err)
		code = CodeSystemError
	case !res.Valid:
		code = CodeInvalidCardNumber
	case res.Expired != nil && *res.Expired:
		code = CodeExpiredCard
	default:
		cardType = res.CardType.String()
	}

	if err := response.Field(39, code); err != nil {
		return nil, fmt.Errorf("setting response code: %w", err)
	}
	if cardType != "" {
		if err := response.Field(44, cardType); err != nil {
			return nil, fmt.Errorf("setting card type: %w", err)
		}
	}

	s.logger.Info("card verified",
		slog.String("pan", cardgen.MaskPAN(pan)),
		slog.String("stan", stan),
		slog.String("response_code", code),
	)

	return response, nil
}

func getString(message *iso8583.Message, id int) string {
	v, err := message.GetString(id)
	if err != nil {
		return ""
	}
	return v
}

func copyFields(from, to *iso8583.Message, ids ...int) error {
	for _, id := range ids {
		v := getString(from, id)
		if v == "" {
			continue
		}
		if err := to.Field(id, v); err != nil {
			return fmt.Errorf("copying field %d: %w", id, err)
		}
	}
	return nil
}
