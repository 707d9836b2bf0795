package server

import (
	"fileserver-lab/errors"
	"fileserver-lab/observability"
	"fileserver-lab/protocol"
	"fileserver-lab/services"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// trailingWindow bounds the wait for bytes sent after the declared body by peers that keep
// their side of the connection open. Bytes written together with the request are already
// buffered and are picked up well within it.
const trailingWindow = 20 * time.Millisecond

// Handler serves exactly one request per connection: read, decode, dispatch, respond, close.
type Handler struct {
	log            *slog.Logger
	service        services.IFileService
	metrics        *observability.Metrics
	requestTimeout time.Duration
	writeTimeout   time.Duration
}

func NewHandler(
	log *slog.Logger,
	service services.IFileService,
	metrics *observability.Metrics,
	requestTimeout, writeTimeout time.Duration,
) *Handler {
	return &Handler{
		log:            log,
		service:        service,
		metrics:        metrics,
		requestTimeout: requestTimeout,
		writeTimeout:   writeTimeout,
	}
}

// reply is the logical response computed for a connection.
type reply struct {
	status   protocol.Status
	payload  []byte
	username string
	path     string
}

func failure(err error, username, path string) reply {
	return reply{
		status:   statusFor(err),
		payload:  []byte(err.Error()),
		username: username,
		path:     path,
	}
}

// Handle answers the single request carried by conn and closes it.
// Every connection receives exactly one logical response, whatever happens while decoding or dispatching.
func (h *Handler) Handle(conn net.Conn) {
	start := time.Now()
	connID := uuid.NewString()
	log := h.log.With("conn_id", connID, "remote", conn.RemoteAddr().String())

	h.metrics.ConnectionOpened()
	defer h.metrics.ConnectionClosed()
	defer func() { _ = conn.Close() }()

	r := h.answer(conn, log)

	blocks, err := h.transmit(conn, r.status, r.payload, log)
	if err != nil {
		log.Warn("Failed to send response", "status", r.status.String(), "error", err)
	}

	log.Info("Request answered",
		"username", r.username,
		"path", r.path,
		"status", r.status.String(),
		"blocks", blocks,
		"bytes", len(r.payload),
		"elapsed", time.Since(start))

	h.metrics.ObserveResponse(observability.RecentResponse{
		ConnID:   connID,
		Remote:   conn.RemoteAddr().String(),
		Username: r.username,
		Path:     r.path,
		Status:   r.status.String(),
		Blocks:   blocks,
		Bytes:    len(r.payload),
	}, time.Since(start))
}

// readTrailing collects excess bytes following a complete request. Running out of the short
// window is the normal outcome for a well-formed request.
func (h *Handler) readTrailing(conn net.Conn, raw []byte, log *slog.Logger) []byte {
	if err := conn.SetReadDeadline(time.Now().Add(trailingWindow)); err != nil {
		return raw
	}
	raw, err := protocol.ReadTrailing(conn, raw)
	var netErr net.Error
	if err != nil && !(errors.As(err, &netErr) && netErr.Timeout()) {
		log.Debug("Could not check for trailing bytes", "error", err)
	}
	return raw
}

// answer reads and dispatches the request. Panics are turned into StatusOther.
func (h *Handler) answer(conn net.Conn, log *slog.Logger) (r reply) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("%w: %v", errors.ErrHandlerPanic, rec)
			log.Error("Recovered from handler panic", "error", err, "stack", string(debug.Stack()))
			r = failure(err, r.username, r.path)
		}
	}()

	if err := conn.SetReadDeadline(time.Now().Add(h.requestTimeout)); err != nil {
		return failure(fmt.Errorf("unable to set read deadline: %w", err), "", "")
	}

	raw, readErr := protocol.ReadRequest(conn)
	if readErr == nil {
		raw = h.readTrailing(conn, raw, log)
	}
	request, err := protocol.DecodeRequest(raw)
	if err != nil {
		log.Warn("Could not read request header", "received", len(raw), "error", readErr)
		return failure(err, "", "")
	}
	r.username = request.Username

	if request.Malformed() {
		err := fmt.Errorf("%w: declared body length %d, received %d bytes",
			errors.ErrMalformedRequest, request.BodyLength, len(request.Body))
		log.Warn("Rejecting malformed request", "username", request.Username, "error", err)
		return failure(err, request.Username, "")
	}

	var payload []byte
	if request.IsRegistration() {
		payload, err = h.service.Register(request.Username, request.Signature)
	} else {
		r.path = string(request.Body)
		payload, err = h.service.Fetch(request.Username, request.Signature, r.path)
	}
	if err != nil {
		log.Debug("Request refused", "username", request.Username, "path", r.path, "error", err)
		return failure(err, r.username, r.path)
	}

	r.status = protocol.StatusOK
	r.payload = payload
	return r
}

// transmit writes the blocks of one logical response in order and returns how many were sent.
// The write deadline applies to each block.
func (h *Handler) transmit(conn net.Conn, status protocol.Status, payload []byte, log *slog.Logger) (int, error) {
	total := protocol.Sum(payload)
	chunks := protocol.Chunk(payload)
	count := uint32(len(chunks))

	for i, chunk := range chunks {
		log.Debug(fmt.Sprintf("Sending reply %d/%d with payload length %d", i+1, count, len(chunk)))
		if err := conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
			return i, fmt.Errorf("unable to set write deadline: %w", err)
		}
		if _, err := conn.Write(protocol.EncodeResponseBlock(status, uint32(i), count, chunk, total)); err != nil {
			return i, fmt.Errorf("write of block %d/%d failed: %w", i+1, count, err)
		}
		h.metrics.BlockSent(len(chunk))
	}
	return len(chunks), nil
}
