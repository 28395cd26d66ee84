package protocol

import (
	"context"

	"go.uber.org/zap"

	"github.com/chordnova/chordnova/internal/chordconfig"
	"github.com/chordnova/chordnova/internal/logging"
)

// Engine is the capability a server session dispatches requests to.
type Engine interface {
	LoadConfig(ctx context.Context, cfg *chordconfig.Config) (bool, error)
	ComputeChordProgression(ctx context.Context) (string, error)
}

// HandleMessage processes one request frame from a client and returns the
// response to send back. It never returns nil.
func HandleMessage(ctx context.Context, eng Engine, remoteAddr string, data []byte) *Response {
	req, err := ParseRequest(data)
	if err != nil {
		logging.Warn("Rejecting malformed request",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return ErrorResponse(req, err)
	}

	switch req.Op {
	case OpLoadConfig:
		return handleLoadConfig(ctx, eng, remoteAddr, req)
	case OpComputeChordProgression:
		return handleCompute(ctx, eng, remoteAddr, req)
	}

	// ParseRequest only lets defined ops through
	return ErrorResponse(req, &MessageError{Reason: "unhandled op", Err: ErrUnknownOp})
}

// handleLoadConfig validates the configuration object before handing it to
// the engine. A configuration the parser refuses is answered with
// accepted=false, matching what the engine would say about it.
func handleLoadConfig(ctx context.Context, eng Engine, remoteAddr string, req *Request) *Response {
	cfg, err := chordconfig.Parse(string(req.Config))
	if err != nil {
		logging.Info("Configuration refused before reaching engine",
			zap.String("remote_addr", remoteAddr),
			zap.String("request_id", req.ID),
			zap.Error(err),
		)
		return AcceptedResponse(req, false)
	}

	accepted, err := eng.LoadConfig(ctx, cfg)
	if err != nil {
		logging.Error("Engine failed to load configuration",
			zap.String("remote_addr", remoteAddr),
			zap.String("request_id", req.ID),
			zap.Error(err),
		)
		return ErrorResponse(req, err)
	}

	logging.Info("Configuration loaded",
		zap.String("remote_addr", remoteAddr),
		zap.String("request_id", req.ID),
		zap.Bool("accepted", accepted),
		zap.Int("fields", cfg.FieldCount()),
	)
	return AcceptedResponse(req, accepted)
}

func handleCompute(ctx context.Context, eng Engine, remoteAddr string, req *Request) *Response {
	result, err := eng.ComputeChordProgression(ctx)
	if err != nil {
		logging.Error("Engine failed to compute progression",
			zap.String("remote_addr", remoteAddr),
			zap.String("request_id", req.ID),
			zap.Error(err),
		)
		return ErrorResponse(req, err)
	}

	logging.Info("Progression computed",
		zap.String("remote_addr", remoteAddr),
		zap.String("request_id", req.ID),
		zap.Int("length", len(result)),
	)
	return ResultResponse(req, result)
}
