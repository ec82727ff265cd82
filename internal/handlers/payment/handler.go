package payment

import (
	"io"
	"kodesha/infras/otel"
	"kodesha/internal/domains/payment/model"
	"kodesha/internal/domains/payment/model/dto"
	"kodesha/internal/domains/payment/service"
	"kodesha/shared/constant"
	"kodesha/shared/failure"
	"kodesha/shared/validator"
	"kodesha/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	maxCallbackBytes = 64 << 10

	headerReferenceID = "X-Reference-Id"
)

type Handler struct {
	service service.Payment
	otel    otel.Otel
}

func New(service service.Payment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/payments", func(routerGroup chi.Router) {
		routerGroup.Post("/callbacks/{method}", handler.Callback)
		routerGroup.Get("/{id}", handler.GetPaymentByID)
		routerGroup.Patch("/{id}/method", handler.SelectMethod)
		routerGroup.Post("/{id}/request", handler.RequestPayment)
		routerGroup.Post("/{id}/capture", handler.CapturePayment)
		routerGroup.Get("/{id}/status", handler.CheckStatus)
	})

	router.Get("/host/earnings", handler.HostEarnings)
}

// GetPaymentByID retrieves a payment.
// @Summary Get a payment by ID
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Data[dto.PaymentResponse]
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/payments/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetPaymentByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPaymentByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	payment, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to get payment")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, payment)
}

// SelectMethod switches the rail of an open payment.
// @Summary Select payment method
// @Description Mobile money rails need a phone number and are charged in the local currency.
// @Tags Payment
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param request body dto.SelectMethodRequest true "Select Method Request"
// @Success 200 {object} response.Data[dto.PaymentResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/payments/{id}/method [patch]
// @Security BearerAuth
func (handler *Handler) SelectMethod(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SelectMethod")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	req := dto.SelectMethodRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	payment, err := handler.service.SelectMethod(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Str("method", req.Method).Msg("failed to select payment method")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, payment)
}

// RequestPayment asks the selected rail to collect the payment.
// @Summary Request payment
// @Description Repeating the call while the request is pending returns the same provider reference.
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 202 {object} response.Data[dto.RequestPaymentResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/payments/{id}/request [post]
// @Security BearerAuth
func (handler *Handler) RequestPayment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RequestPayment")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	res, err := handler.service.RequestPayment(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to request payment")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Payment requested with reference " + res.ProviderReference)

	response.WithJSON(writer, http.StatusAccepted, res)
}

// CapturePayment captures an approved card gateway order.
// @Summary Capture payment
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Data[dto.PaymentStatusResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/payments/{id}/capture [post]
// @Security BearerAuth
func (handler *Handler) CapturePayment(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CapturePayment")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	res, err := handler.service.Capture(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to capture payment")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// CheckStatus reports the payment status, asking the provider while it is still pending.
// @Summary Check payment status
// @Tags Payment
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Data[dto.PaymentStatusResponse]
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/payments/{id}/status [get]
// @Security BearerAuth
func (handler *Handler) CheckStatus(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckStatus")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	res, err := handler.service.CheckStatus(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to check payment status")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// Callback receives a provider notification and reconciles the payment it names.
// Unknown or already settled payments are acknowledged so the provider stops retrying.
// @Summary Provider notification
// @Tags Payment
// @Accept json
// @Produce json
// @Param method path string true "Payment method (card_gateway, mtn_momo, airtel_money)"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Router /v1/payments/callbacks/{method} [post]
func (handler *Handler) Callback(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Callback")
	defer scope.End()

	method, err := model.ParseMethod(chi.URLParam(request, constant.RequestParamMethod))
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, failure.Validation(constant.RequestParamMethod, err.Error()))

		return
	}

	body, err := io.ReadAll(io.LimitReader(request.Body, maxCallbackBytes))
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, failure.BadRequest(err))

		return
	}

	reference, err := dto.ParseCallback(method, body, request.Header.Get(headerReferenceID))
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("method", string(method)).Msg("rejected malformed payment callback")

		response.WithError(writer, failure.BadRequest(err))

		return
	}

	scope.SetAttributes(map[string]any{
		"payment.method":    string(method),
		"payment.reference": reference,
	})

	if err := handler.service.HandleCallback(ctx, method, reference); err != nil {
		code := failure.GetCode(err)
		if code != http.StatusNotFound && code != http.StatusConflict {
			scope.TraceError(err)
			log.Error().Err(err).Str("reference", reference).Msg("failed to handle payment callback")

			response.WithError(writer, err)

			return
		}

		log.Warn().Err(err).Str("reference", reference).Msg("payment callback acknowledged without reconciliation")
	}

	response.WithMessage(writer, http.StatusOK, "OK")
}

// HostEarnings sums the completed payments on the host's properties.
// @Summary Host earnings
// @Tags Payment
// @Produce json
// @Success 200 {object} response.Data[dto.EarningsResponse]
// @Failure 403 {object} response.Error
// @Router /v1/host/earnings [get]
// @Security BearerAuth
func (handler *Handler) HostEarnings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".HostEarnings")
	defer scope.End()

	earnings, err := handler.service.HostEarnings(ctx)
	if err != nil {
		scope.TraceError(err)

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, earnings)
}
