package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"booking-service/src/internal/model"
	"booking-service/src/pkg/log"
	"booking-service/src/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
)

type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Currency  string
	Timeout   time.Duration
}

func ConfigFromViper(v *viper.Viper) Config {
	cfg := Config{
		BaseURL:   strings.TrimRight(v.GetString("payment.processor.base_url"), "/"),
		KeyID:     v.GetString("payment.processor.key_id"),
		KeySecret: v.GetString("payment.processor.key_secret"),
		Currency:  v.GetString("payment.processor.currency"),
		Timeout:   v.GetDuration("payment.processor.timeout"),
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return cfg
}

// Client talks to the hosted payment processor over its REST API. Amounts cross the wire
// in minor units.
type Client struct {
	cfg Config
	log log.Log
}

func NewClient(cfg Config, log log.Log) *Client {
	return &Client{cfg: cfg, log: log}
}

type orderBody struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderReply struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type linkBody struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	ReferenceID string            `json:"reference_id"`
	Description string            `json:"description"`
	Notes       map[string]string `json:"notes,omitempty"`
}

type linkReply struct {
	ID       string `json:"id"`
	ShortURL string `json:"short_url"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
	Payments []struct {
		PaymentID string `json:"payment_id"`
		Status    string `json:"status"`
	} `json:"payments"`
}

func (c *Client) CreateOrder(ctx context.Context, amount float64, receipt string) (*model.PaymentOrder, error) {
	var reply orderReply
	agent := c.agent(fiber.MethodPost, "/v1/orders").JSON(orderBody{
		Amount:   minor(amount),
		Currency: c.cfg.Currency,
		Receipt:  receipt,
	})
	if err := c.do(ctx, "CreateOrder", agent, &reply); err != nil {
		return nil, err
	}
	return &model.PaymentOrder{
		ID:       reply.ID,
		Amount:   major(reply.Amount),
		Currency: reply.Currency,
		Receipt:  reply.Receipt,
		Status:   reply.Status,
	}, nil
}

func (c *Client) CreatePaymentLink(ctx context.Context, amount float64, reference, description string) (*model.PaymentLink, error) {
	var reply linkReply
	agent := c.agent(fiber.MethodPost, "/v1/payment_links").JSON(linkBody{
		Amount:      minor(amount),
		Currency:    c.cfg.Currency,
		ReferenceID: reference,
		Description: description,
		Notes:       map[string]string{"bookingId": reference},
	})
	if err := c.do(ctx, "CreatePaymentLink", agent, &reply); err != nil {
		return nil, err
	}
	return reply.toModel(), nil
}

func (c *Client) PaymentLinkStatus(ctx context.Context, linkID string) (*model.PaymentLink, error) {
	var reply linkReply
	agent := c.agent(fiber.MethodGet, "/v1/payment_links/"+linkID)
	if err := c.do(ctx, "PaymentLinkStatus", agent, &reply); err != nil {
		return nil, err
	}
	return reply.toModel(), nil
}

// VerifySignature checks the checkout callback: hex(HMAC-SHA256(orderID|paymentID, secret)).
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	expected := Sign(orderID, paymentID, c.cfg.KeySecret)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// Sign produces the checkout signature for an order/payment pair.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) agent(method, path string) *fiber.Agent {
	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.cfg.BaseURL + path)
	return agent.BasicAuth(c.cfg.KeyID, c.cfg.KeySecret).Timeout(c.cfg.Timeout)
}

func (c *Client) do(ctx context.Context, op string, agent *fiber.Agent, out interface{}) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < c.cfg.Timeout {
			agent.Timeout(left)
		}
	}
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return err
	}
	code, body, errs := agent.Struct(out)
	if len(errs) > 0 {
		c.log.Error("payment-processor", "request failed", op, utils.ConvertString(errs[0].Error()))
		return fmt.Errorf("%s: %w", op, errs[0])
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		c.log.Error("payment-processor", "unexpected status", op, string(body))
		return fmt.Errorf("%s: processor responded %d", op, code)
	}
	return nil
}

func (r linkReply) toModel() *model.PaymentLink {
	link := &model.PaymentLink{
		ID:       r.ID,
		ShortURL: r.ShortURL,
		Amount:   major(r.Amount),
		Status:   r.Status,
	}
	for _, p := range r.Payments {
		if p.Status == "captured" {
			link.PaymentID = p.PaymentID
		}
	}
	return link
}

func minor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func major(amount int64) float64 {
	return utils.RoundMoney(float64(amount) / 100)
}
