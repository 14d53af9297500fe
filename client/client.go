package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"inventario-app/idgen"
)

// Options carry what the host session hands to the controller. The CSRF
// token and cookies are opaque: they are forwarded, never generated.
type Options struct {
	BaseURL       string
	CSRFToken     string
	SessionCookie string
	Token         string
	Timeout       time.Duration
	Logger        zerolog.Logger
}

// Client talks to the inventory REST API.
type Client struct {
	base     *url.URL
	opts     Options
	operator string
	log      zerolog.Logger
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	c := &Client{base: base, opts: opts, log: opts.Logger}
	if opts.Token != "" {
		operator, err := Operator(opts.Token)
		if err != nil {
			return nil, err
		}
		c.operator = operator
		c.log = c.log.With().Str("operator", operator).Logger()
	}
	return c, nil
}

// Operator is the user the session token was issued to, if any.
func (c *Client) Operator() string { return c.operator }

// Resolve turns an endpoint (relative or absolute) into a full URL with the
// given query.
func (c *Client) Resolve(endpoint string, query url.Values) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrapf(err, "parse endpoint %q", endpoint)
	}
	u := c.base.ResolveReference(ref)
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			q[k] = append([]string(nil), vs...)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// GetJSON reads a collection or record and decodes it into out.
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	u, err := c.Resolve(endpoint, query)
	if err != nil {
		return &Error{Kind: KindTransport, Method: fiber.MethodGet, URL: endpoint, Err: err}
	}
	return c.do(ctx, fiber.MethodGet, u, fiber.Get(u), out)
}

// PostForm submits a form-encoded write. The CSRF token travels as the
// csrfmiddlewaretoken field, the way the host forms send it.
func (c *Client) PostForm(ctx context.Context, endpoint string, form url.Values, out interface{}) error {
	u, err := c.Resolve(endpoint, nil)
	if err != nil {
		return &Error{Kind: KindTransport, Method: fiber.MethodPost, URL: endpoint, Err: err}
	}
	body := url.Values{}
	for k, vs := range form {
		body[k] = append([]string(nil), vs...)
	}
	if c.opts.CSRFToken != "" {
		body.Set("csrfmiddlewaretoken", c.opts.CSRFToken)
	}

	a := fiber.Post(u)
	a.ContentType(fiber.MIMEApplicationForm)
	a.Body([]byte(body.Encode()))
	return c.do(ctx, fiber.MethodPost, u, a, out)
}

// PostJSON submits a JSON write. The CSRF token travels in X-CSRFToken.
func (c *Client) PostJSON(ctx context.Context, endpoint string, payload, out interface{}) error {
	u, err := c.Resolve(endpoint, nil)
	if err != nil {
		return &Error{Kind: KindTransport, Method: fiber.MethodPost, URL: endpoint, Err: err}
	}
	a := fiber.Post(u)
	a.JSON(payload)
	return c.do(ctx, fiber.MethodPost, u, a, out)
}

func (c *Client) do(ctx context.Context, method, u string, a *fiber.Agent, out interface{}) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(a)
		return &Error{Kind: KindTransport, Method: method, URL: u, Err: err}
	}

	reqID := idgen.Generate().String()
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	a.Set(fiber.HeaderXRequestID, reqID)
	if c.opts.Token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.opts.Token)
	}
	if c.opts.SessionCookie != "" {
		a.Cookie("sessionid", c.opts.SessionCookie)
	}
	if method != fiber.MethodGet && c.opts.CSRFToken != "" {
		a.Set("X-CSRFToken", c.opts.CSRFToken)
		a.Cookie("csrftoken", c.opts.CSRFToken)
	}

	timeout := c.opts.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	if timeout > 0 {
		a.Timeout(timeout)
	}

	log := c.log.With().Str("method", method).Str("url", u).Str("request_id", reqID).Logger()

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		log.Error().Err(err).Msg("request could not be prepared")
		return &Error{Kind: KindTransport, Method: method, URL: u, Err: err}
	}

	start := time.Now()
	status, body, errs := a.Bytes()
	log = log.With().Int("status", status).Dur("latency", time.Since(start)).Logger()

	if len(errs) > 0 {
		log.Error().Err(errs[0]).Msg("request failed")
		return &Error{Kind: KindTransport, Method: method, URL: u, Err: errs[0]}
	}

	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		var reply struct {
			Mensaje string `json:"mensaje"`
			Detail  string `json:"detail"`
		}
		_ = json.Unmarshal(body, &reply)
		if reply.Mensaje == "" {
			reply.Mensaje = reply.Detail
		}
		log.Warn().Str("mensaje", reply.Mensaje).Msg("server rejected request")
		return &Error{Kind: KindServer, Method: method, URL: u, Status: status, Mensaje: reply.Mensaje}
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 && !json.Valid(body) {
		log.Error().Msg("response is not json")
		return &Error{Kind: KindMalformed, Method: method, URL: u, Status: status, Err: errors.New("invalid json body")}
	}
	if out != nil {
		if len(body) == 0 {
			return &Error{Kind: KindMalformed, Method: method, URL: u, Status: status, Err: errors.New("empty body")}
		}
		if err := json.Unmarshal(body, out); err != nil {
			log.Error().Err(err).Msg("response does not match expected shape")
			return &Error{Kind: KindMalformed, Method: method, URL: u, Status: status, Err: err}
		}
	}

	log.Debug().Msg("request completed")
	return nil
}
