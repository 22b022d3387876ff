package ragapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StreamHandler receives decoded answer text as it arrives. The structured
// metadata tail is never forwarded through it.
type StreamHandler func(chunk string)

// streamDecoder consumes the hybrid stream format: the body is literal
// answer text, except that the final chunk may begin with a newline and
// carry a JSON object with passages and session metadata.
type streamDecoder struct {
	onChunk StreamHandler
	text    strings.Builder
	final   *ChatResponse
}

func newStreamDecoder(onChunk StreamHandler) *streamDecoder {
	return &streamDecoder{onChunk: onChunk}
}

// feed processes one decoded chunk of the response body.
func (d *streamDecoder) feed(chunk string) {
	if strings.HasPrefix(chunk, "\n") && strings.Contains(chunk, `"passages"`) {
		var tail ChatResponse
		if err := json.Unmarshal([]byte(chunk[1:]), &tail); err == nil {
			d.text.WriteString(tail.Answer)
			d.final = &tail
			return
		}
		// Not valid JSON after all; treat it as ordinary text.
	}

	if d.onChunk != nil {
		d.onChunk(chunk)
	}
	d.text.WriteString(chunk)
}

// finish returns the final structured result once the stream has ended. A
// captured tail wins; otherwise the accumulated text goes through the
// recovery tiers, echoing request parameters for anything unrecoverable.
func (d *streamDecoder) finish(req ChatRequest) *ChatResponse {
	if d.final != nil {
		return d.final
	}
	return recoverResponse(d.text.String(), req)
}

// ChatStream issues a streaming chat request and decodes the hybrid body.
// onChunk is invoked with displayable text as it arrives. Malformed tail
// content degrades to plain-text handling and never fails the call; only
// transport-level problems produce an error.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, onChunk StreamHandler) (*ChatResponse, error) {
	req.Stream = true

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/chat", req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat stream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend returned status: %d", resp.StatusCode)
	}
	if resp.Body == nil {
		return nil, fmt.Errorf("empty response body")
	}

	dec := newStreamDecoder(onChunk)
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			dec.feed(string(buf[:n]))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read stream: %w", readErr)
		}
	}

	return dec.finish(req), nil
}
