package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"lifestuff/internal/domain"
)

type HTTP struct {
	Base string
	HTTP *http.Client
}

func NewHTTP(base string) *HTTP { return &HTTP{Base: base, HTTP: http.DefaultClient} }

func packetPath(name domain.Identifier) string { return "/packet/" + name.String() }

func msgPath(id domain.PublicID) string { return "/msg/" + url.PathEscape(string(id)) }

func (c *HTTP) Put(ctx context.Context, name domain.Identifier, p domain.SignedData) error {
	return c.do(ctx, "put", http.MethodPut, packetPath(name), p, nil)
}

func (c *HTTP) Get(ctx context.Context, name domain.Identifier) (domain.SignedData, error) {
	var out domain.SignedData
	if err := c.do(ctx, "get", http.MethodGet, packetPath(name), nil, &out); err != nil {
		return domain.SignedData{}, err
	}
	return out, nil
}

func (c *HTTP) Delete(ctx context.Context, name domain.Identifier, proof domain.OwnershipProof) error {
	return c.do(ctx, "delete", http.MethodDelete, packetPath(name), proof, nil)
}

func (c *HTTP) KeyUnique(ctx context.Context, name domain.Identifier) (bool, error) {
	var out struct {
		Unique bool `json:"unique"`
	}
	if err := c.do(ctx, "key_unique", http.MethodGet, packetPath(name)+"/unique", nil, &out); err != nil {
		return false, err
	}
	return out.Unique, nil
}

func (c *HTTP) Send(ctx context.Context, msg domain.Message) error {
	return c.do(ctx, "send", http.MethodPost, msgPath(msg.To), msg, nil)
}

func (c *HTTP) Fetch(ctx context.Context, me domain.PublicID, limit int) ([]domain.Message, error) {
	path := msgPath(me)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var msgs []domain.Message
	if err := c.do(ctx, "fetch", http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *HTTP) Ack(ctx context.Context, me domain.PublicID, count int) error {
	return c.do(ctx, "ack", http.MethodPost, msgPath(me)+"/ack", struct {
		Count int `json:"count"`
	}{Count: count}, nil)
}

func (c *HTTP) do(ctx context.Context, op, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domain.NetworkError{Op: op, Code: domain.CodeTransport, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errorOf(op, path, resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

var _ domain.RelayClient = (*HTTP)(nil)
