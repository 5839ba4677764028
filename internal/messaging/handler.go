package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinicware/agendabot/internal/dialogue"
	"github.com/clinicware/agendabot/internal/observability/metrics"
	"github.com/clinicware/agendabot/internal/presenter"
	"github.com/clinicware/agendabot/internal/session"
	"github.com/clinicware/agendabot/pkg/logging"
)

var tracer = otel.Tracer("agendabot.internal.messaging")

// replyApology goes out when a collaborator fails mid-step. The session is
// left untouched so the patient can retry the same message.
const replyApology = "Tive um problema aqui do meu lado e não consegui processar sua mensagem. Pode tentar de novo? Se preferir, envie \"menu\" para recomeçar."

// Stepper advances one patient dialogue by one inbound message.
type Stepper interface {
	Step(ctx context.Context, sess *session.Session, input string) (string, error)
}

// Handler handles the WhatsApp webhook and health endpoints.
type Handler struct {
	machine     Stepper
	store       session.Store
	locks       *session.KeyedMutex
	presenter   presenter.Presenter
	metrics     *metrics.WebhookMetrics
	logger      *logging.Logger
	authToken   string
	serviceName string
	timezone    string
}

// NewHandler wires the webhook pipeline. authToken enables provider
// signature validation when non-empty.
func NewHandler(machine Stepper, store session.Store, pres presenter.Presenter, m *metrics.WebhookMetrics, logger *logging.Logger, authToken, serviceName, timezone string) *Handler {
	if machine == nil {
		panic("messaging: stepper cannot be nil")
	}
	if store == nil {
		panic("messaging: session store cannot be nil")
	}
	if pres == nil {
		pres = presenter.Noop{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		machine:     machine,
		store:       store,
		locks:       session.NewKeyedMutex(),
		presenter:   pres,
		metrics:     m,
		logger:      logger,
		authToken:   authToken,
		serviceName: serviceName,
		timezone:    timezone,
	}
}

// Webhook handles POST /whatsapp. One request carries one patient message;
// the response is the TwiML reply. Messages from the same patient are
// serialized on a per-patient lock so concurrent deliveries cannot interleave
// session writes.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "messaging.webhook")
	defer span.End()
	start := time.Now()

	if h.authToken != "" {
		if !ValidateTwilioSignature(r, h.authToken, buildAbsoluteURL(r)) {
			h.logger.Warn("invalid webhook signature")
			span.RecordError(errors.New("invalid webhook signature"))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	msg, err := ParseWebhook(r)
	if err != nil {
		h.logger.Error("failed to parse webhook", "error", err)
		span.RecordError(err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("agendabot.patient", msg.From),
		attribute.String("agendabot.message_sid", msg.MessageSid),
	)

	unlock := h.locks.Lock(msg.From)
	defer unlock()

	sess, err := h.store.Get(ctx, msg.From)
	switch {
	case errors.Is(err, session.ErrNotFound):
		sess = &session.Session{PatientID: msg.From, State: dialogue.StateWelcome}
	case err != nil:
		h.respondError(w, span, start, "session load failed", err)
		return
	}
	prevState := sess.State

	reply, err := h.machine.Step(ctx, sess, msg.Body)
	if err != nil {
		h.respondError(w, span, start, "dialogue step failed", err)
		return
	}

	if err := h.store.Put(ctx, sess); err != nil {
		h.respondError(w, span, start, "session save failed", err)
		return
	}

	if sess.State == dialogue.StateBooked && prevState != dialogue.StateBooked {
		h.metrics.ObserveBooking()
	}
	h.metrics.ObserveInbound(sess.State, "ok")
	h.metrics.ObserveLatency("ok", time.Since(start).Seconds())
	span.SetAttributes(attribute.String("agendabot.state", sess.State))

	h.writeTwiML(w, h.presenter.Rewrite(ctx, reply))
}

// respondError logs the failure and sends the apology reply. The session is
// deliberately not persisted, so a retry replays the same step.
func (h *Handler) respondError(w http.ResponseWriter, span trace.Span, start time.Time, msg string, err error) {
	span.RecordError(err)
	h.logger.Error(msg, "error", err)
	h.metrics.ObserveInbound("", "error")
	h.metrics.ObserveLatency("error", time.Since(start).Seconds())
	h.writeTwiML(w, replyApology)
}

func (h *Handler) writeTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(TwiML(message)))
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":   "ok",
		"service":  h.serviceName,
		"timezone": h.timezone,
	})
}
