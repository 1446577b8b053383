package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"cinepay/internal/app"
	"cinepay/internal/domain"
	"cinepay/internal/handler"
	"cinepay/internal/repository/memory"
	"cinepay/internal/service"
)

// unreachableRedis returns a client whose dials fail fast, standing in for a
// Redis outage.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 10 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func newIdempotentTestRouter(redisClient *redis.Client) *gin.Engine {
	store := memory.NewPaymentStore()
	promoStore := memory.NewPromoStore()
	resolver := domain.NewMethodResolver(fixedAuthorize(true))
	paymentService := service.NewPaymentService(store, promoStore, resolver, NewMockPublisher(), NewMockNotifier())
	promoService := service.NewPromoService(promoStore)

	return app.NewRouter(app.RouterDeps{
		PaymentHandler: handler.NewPaymentHandler(paymentService),
		PromoHandler:   handler.NewPromoHandler(promoService),
		RedisClient:    redisClient,
	})
}

func TestIdempotencyMiddleware_FailsOpenOnRedisOutage(t *testing.T) {
	t.Parallel()

	redisClient := unreachableRedis()
	defer redisClient.Close()
	router := newIdempotentTestRouter(redisClient)

	req := handler.CreatePaymentRequest{
		InvoiceNumber: "BK-1001",
		TotalPrice:    100000,
		PaymentMethod: "QRIS",
		Booking:       newBooking("alice@example.com", 100000),
	}

	// With Redis down the middleware must not block requests; the service
	// itself still handles both of them.
	resp := doJSONWithKey(t, router, http.MethodPost, "/payments", req, "key-1")
	if resp.Code != http.StatusOK {
		t.Fatalf("create during redis outage status = %d, body = %s", resp.Code, resp.Body.String())
	}
	resp = doJSONWithKey(t, router, http.MethodPost, "/payments", req, "key-1")
	if resp.Code != http.StatusBadRequest {
		t.Errorf("repeat without replay cache status = %d, want 400 from the duplicate check", resp.Code)
	}
}

func TestIdempotencyMiddleware_SkipsReads(t *testing.T) {
	t.Parallel()

	redisClient := unreachableRedis()
	defer redisClient.Close()
	router := newIdempotentTestRouter(redisClient)

	// Reads never touch the idempotency store, keyed or not.
	resp := doJSONWithKey(t, router, http.MethodGet, "/payments", nil, "key-2")
	if resp.Code != http.StatusOK {
		t.Errorf("GET /payments with idempotency key status = %d, want 200", resp.Code)
	}
	resp = doJSONWithKey(t, router, http.MethodGet, "/health", nil, "")
	if resp.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", resp.Code)
	}
}
