// Package telegram is the chat transport over the Telegram Bot API. It
// converts updates into model events and renders model replies as messages
// with inline keyboards.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/tutorbot/internal/domain/model"
	"github.com/okian/tutorbot/pkg/logger"
	"github.com/okian/tutorbot/pkg/metrics"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// ErrAPI wraps every unsuccessful Bot API reply.
var ErrAPI = errors.New("telegram api error")

// APIError is an unsuccessful Bot API reply.
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

func (e *APIError) Unwrap() error { return ErrAPI }

// Client calls the Bot API for one bot token.
type Client struct {
	token    string
	baseURL  string
	httpc    *http.Client
	scrubber *strings.Replacer
	log      logger.Logger
}

// New returns a client for token.
func New(token string, opts ...Option) *Client {
	o := options{baseURL: DefaultAPIURL, httpc: &http.Client{Timeout: 60 * time.Second}, log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Client{
		token:    token,
		baseURL:  strings.TrimRight(o.baseURL, "/"),
		httpc:    o.httpc,
		scrubber: strings.NewReplacer(token, "[EXPUNGED]"),
		log:      o.log,
	}
}

func (c *Client) url(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}

// call posts a JSON payload and decodes the result into out (may be nil).
func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s: encode: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(method), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: %s", method, c.scrubber.Replace(err.Error()))
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, method, out)
}

func (c *Client) do(req *http.Request, method string, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.RecordTransportError(method)
		// url.Error embeds the request URL, which carries the token.
		return fmt.Errorf("telegram %s: %s", method, c.scrubber.Replace(err.Error()))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordTransportError(method)
		return fmt.Errorf("telegram %s: read body: %w", method, err)
	}

	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		metrics.RecordTransportError(method)
		return fmt.Errorf("telegram %s: status %d: decode: %w", method, resp.StatusCode, err)
	}
	if !r.OK {
		metrics.RecordTransportError(method)
		apiErr := &APIError{Method: method, Code: r.ErrorCode, Description: r.Description}
		if r.Parameters != nil {
			apiErr.RetryAfter = time.Duration(r.Parameters.RetryAfter) * time.Second
		}
		return apiErr
	}
	if out != nil && len(r.Result) > 0 {
		if err := json.Unmarshal(r.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}

func keyboard(m *model.Menu) *InlineKeyboardMarkup {
	if m == nil || len(m.Rows) == 0 {
		return nil
	}
	kb := &InlineKeyboardMarkup{InlineKeyboard: make([][]InlineKeyboardButton, 0, len(m.Rows))}
	for _, row := range m.Rows {
		buttons := make([]InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, InlineKeyboardButton{Text: b.Text, CallbackData: b.Data})
		}
		kb.InlineKeyboard = append(kb.InlineKeyboard, buttons)
	}
	return kb
}

// Send delivers a reply. Edits replace the message in place; an edit that
// would not change anything is treated as success.
func (c *Client) Send(ctx context.Context, chatID int64, r model.Reply) error {
	req := sendMessageRequest{ChatID: chatID, Text: r.Text, ReplyMarkup: keyboard(r.Menu)}
	if r.Edit && r.MessageID != 0 {
		req.MessageID = r.MessageID
		err := c.call(ctx, "editMessageText", req, nil)
		var apiErr *APIError
		if errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "message is not modified") {
			return nil
		}
		return err
	}
	return c.call(ctx, "sendMessage", req, nil)
}

// Notify answers a button press with a short toast. An empty text just
// stops the client's progress indicator.
func (c *Client) Notify(ctx context.Context, callbackID, text string) error {
	if callbackID == "" {
		return nil
	}
	return c.call(ctx, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: callbackID, Text: text}, nil)
}

// Typing shows the typing indicator in chatID.
func (c *Client) Typing(ctx context.Context, chatID int64) error {
	return c.call(ctx, "sendChatAction", chatActionRequest{ChatID: chatID, Action: "typing"}, nil)
}

// SendDocument uploads the file at path to chatID.
func (c *Client) SendDocument(ctx context.Context, chatID int64, path, filename, caption string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telegram sendDocument: %w", err)
	}
	defer f.Close()

	if filename == "" {
		filename = filepath.Base(path)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("chat_id", fmt.Sprint(chatID))
	if caption != "" {
		_ = mw.WriteField("caption", caption)
	}
	part, err := mw.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("telegram sendDocument: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("telegram sendDocument: copy: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("telegram sendDocument: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("sendDocument"), &buf)
	if err != nil {
		return fmt.Errorf("telegram sendDocument: %s", c.scrubber.Replace(err.Error()))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, "sendDocument", nil)
}

// GetUpdates long-polls for updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(timeout.Seconds()),
		AllowedUpdates: []string{"message", "callback_query"},
	}, &updates)
	return updates, err
}

// SetWebhook registers url as the update destination.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	return c.call(ctx, "setWebhook", setWebhookRequest{URL: url, SecretToken: secret, Allowed: []string{"message", "callback_query"}}, nil)
}

// DeleteWebhook switches the bot back to getUpdates delivery.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", struct{}{}, nil)
}
