package lfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/sourcegraph/conc/pool"
)

const (
	mediaType          = "application/vnd.git-lfs+json; charset=utf-8"
	defaultConcurrency = 8
)

// Client is the Batch API HTTP client (§4.6). It is immutable after
// construction and safe to share across goroutines; every batch call is
// independent and there is no global mutable state.
type Client struct {
	cfg         ClientConfig
	cache       *ObjectCache
	http        *http.Client
	concurrency int
	logger      Logger
}

// ClientOption configures optional Client behavior.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying *http.Client, e.g. to set a
// transport or timeout.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithConcurrency bounds how many per-object sub-operations a single
// batch call may run at once (§5: "per-object sub-operations may proceed
// in any order").
func WithConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger attaches a Logger for internal tracing.
func WithLogger(l Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient validates cfg and returns a Client backed by cache.
func NewClient(cfg ClientConfig, cache *ObjectCache, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		cfg:         cfg,
		cache:       cache,
		http:        http.DefaultClient,
		concurrency: defaultConcurrency,
		logger:      defaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Batch POSTs a Batch request for op over objects to
// <endpoint>/objects/batch and returns the decoded response (§4.6, §6).
func (c *Client) Batch(ctx context.Context, op BatchOperation, objects []BatchRequestObject) (*BatchResponse, error) {
	req := NewBatchRequest(op, objects)
	req.Ref = c.cfg.Ref

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding batch request: %s", ErrTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/objects/batch", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: building batch request: %s", ErrTransport, err)
	}
	httpReq.Header.Set("Accept", mediaType)
	httpReq.Header.Set("Content-Type", mediaType)
	c.setAuth(httpReq)

	c.logger.Log("batch", "operation", op, "count", len(objects))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: batch request: %s", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading batch response: %s", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: batch request returned status %d: %s", ErrTransport, resp.StatusCode, string(respBody))
	}

	var batchResp BatchResponse
	if err := json.Unmarshal(respBody, &batchResp); err != nil {
		return nil, fmt.Errorf("%w: decoding batch response: %s", ErrTransport, err)
	}
	return &batchResp, nil
}

// setAuth attaches configured credentials. Validate already guaranteed
// the endpoint is HTTPS whenever credentials are set.
func (c *Client) setAuth(req *http.Request) {
	switch {
	case c.cfg.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	case c.cfg.Username != "" || c.cfg.Password != "":
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
}

// CheckExists asks the server which of oids it already has, via a
// read-only download batch, without transferring any content. This is a
// convenience supplement (not transferring bytes): an object the server
// reports a download action for exists; one reported only with an error
// does not.
func (c *Client) CheckExists(ctx context.Context, oids []OID) (map[OID]bool, error) {
	objects := make([]BatchRequestObject, len(oids))
	for i, oid := range oids {
		objects[i] = BatchRequestObject{OID: oid}
	}
	resp, err := c.Batch(ctx, BatchDownload, objects)
	if err != nil {
		return nil, err
	}
	result := make(map[OID]bool, len(resp.Objects))
	for _, obj := range resp.Objects {
		_, has := obj.DownloadAction()
		result[obj.OID] = has && !obj.HasError()
	}
	return result, nil
}

// Upload performs a single-object upload batch and, if the server does
// not already have the object, PUTs source to the returned upload action
// (§4.6 point 1-3).
func (c *Client) Upload(ctx context.Context, p Pointer, source io.Reader) error {
	resp, err := c.Batch(ctx, BatchUpload, []BatchRequestObject{{OID: p.OID(), Size: p.Size()}})
	if err != nil {
		return err
	}
	if len(resp.Objects) != 1 {
		return fmt.Errorf("%w: expected 1 object in batch response, got %d", ErrBatchProtocol, len(resp.Objects))
	}
	return c.uploadOne(ctx, p, resp.Objects[0], source)
}

func (c *Client) uploadOne(ctx context.Context, p Pointer, obj BatchResponseObject, source io.Reader) error {
	if obj.HasError() {
		return fmt.Errorf("%w: %s", ErrBatchProtocol, obj.Error)
	}
	action, ok := obj.UploadAction()
	if !ok {
		// No upload action means the server already has the object.
		return nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, action.Href, source)
	if err != nil {
		return fmt.Errorf("%w: building upload request: %s", ErrTransport, err)
	}
	httpReq.ContentLength = p.Size()
	for k, v := range action.Header {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: uploading %s: %s", ErrTransport, p.OID(), err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: upload of %s returned status %d", ErrTransport, p.OID(), resp.StatusCode)
	}
	return nil
}

// Download performs a single-object download batch, streams the result
// into the cache with integrity verification, and returns the bytes
// (§4.6 point "Single-object convenience").
func (c *Client) Download(ctx context.Context, p Pointer) ([]byte, error) {
	if err := c.DownloadBatch(ctx, []Pointer{p}); err != nil {
		return nil, err
	}
	rc, _, err := c.cache.Open(p.OID())
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// UploadItem pairs a Pointer with the content source to upload for it.
type UploadItem struct {
	Pointer Pointer
	Source  io.Reader
}

// UploadBatch uploads every item in one Batch round-trip, fanning the
// per-object PUTs out across a bounded worker pool (§4.6, §5). It
// returns success only if every object either uploaded or was already
// present (all-or-error semantics).
func (c *Client) UploadBatch(ctx context.Context, items []UploadItem) error {
	if len(items) == 0 {
		return nil
	}
	objects := make([]BatchRequestObject, len(items))
	for i, it := range items {
		objects[i] = BatchRequestObject{OID: it.Pointer.OID(), Size: it.Pointer.Size()}
	}
	resp, err := c.Batch(ctx, BatchUpload, objects)
	if err != nil {
		return err
	}
	byOID := make(map[OID]BatchResponseObject, len(resp.Objects))
	for _, obj := range resp.Objects {
		byOID[obj.OID] = obj
	}

	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(c.concurrency)
	for _, it := range items {
		it := it
		obj, ok := byOID[it.Pointer.OID()]
		if !ok {
			return fmt.Errorf("%w: server omitted object %s from batch response", ErrBatchProtocol, it.Pointer.OID())
		}
		p.Go(func(ctx context.Context) error {
			return c.uploadOne(ctx, it.Pointer, obj, it.Source)
		})
	}
	return p.Wait()
}

// DownloadBatch downloads every pointer in one Batch round-trip, fanning
// the per-object GETs out across a bounded worker pool, verifying
// integrity and size as each stream completes, and populating the cache
// (§4.6, §5).
func (c *Client) DownloadBatch(ctx context.Context, pointers []Pointer) error {
	if len(pointers) == 0 {
		return nil
	}
	objects := make([]BatchRequestObject, len(pointers))
	for i, p := range pointers {
		objects[i] = BatchRequestObject{OID: p.OID(), Size: p.Size()}
	}
	resp, err := c.Batch(ctx, BatchDownload, objects)
	if err != nil {
		return err
	}
	byOID := make(map[OID]BatchResponseObject, len(resp.Objects))
	for _, obj := range resp.Objects {
		byOID[obj.OID] = obj
	}

	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(c.concurrency)
	for _, ptr := range pointers {
		ptr := ptr
		if present, err := c.cache.Contains(ptr.OID(), ptr.Size()); err == nil && present {
			continue
		}
		obj, ok := byOID[ptr.OID()]
		if !ok {
			return fmt.Errorf("%w: server omitted object %s from batch response", ErrBatchProtocol, ptr.OID())
		}
		p.Go(func(ctx context.Context) error {
			return c.downloadOne(ctx, ptr, obj)
		})
	}
	return p.Wait()
}

func (c *Client) downloadOne(ctx context.Context, p Pointer, obj BatchResponseObject) error {
	if obj.HasError() {
		return fmt.Errorf("%w: %s", ErrBatchProtocol, obj.Error)
	}
	action, ok := obj.DownloadAction()
	if !ok {
		return fmt.Errorf("%w: object %s has no download action", ErrBatchProtocol, p.OID())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, action.Href, nil)
	if err != nil {
		return fmt.Errorf("%w: building download request: %s", ErrTransport, err)
	}
	for k, v := range action.Header {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: downloading %s: %s", ErrTransport, p.OID(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: download of %s returned status %d", ErrTransport, p.OID(), resp.StatusCode)
	}

	w, err := c.cache.Writer()
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		_ = w.Abort()
		return fmt.Errorf("%w: streaming %s into cache: %s", ErrTransport, p.OID(), err)
	}
	return w.CommitExpected(p.OID(), p.Size())
}

// UploadFile computes the Pointer for the file at path by streaming it
// through a HashingSink once, then uploads it from a second pass reading
// the same file (§4.6 "Streaming file operations").
func (c *Client) UploadFile(ctx context.Context, path string) (Pointer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pointer{}, fmt.Errorf("%w: opening %s: %s", ErrCacheIO, path, err)
	}
	sink := NewHashingSink(io.Discard)
	_, err = io.Copy(sink, f)
	f.Close()
	if err != nil {
		return Pointer{}, fmt.Errorf("%w: hashing %s: %s", ErrCacheIO, path, err)
	}
	p, err := NewPointer(sink.OID(), sink.Size())
	if err != nil {
		return Pointer{}, err
	}

	f2, err := os.Open(path)
	if err != nil {
		return Pointer{}, fmt.Errorf("%w: reopening %s: %s", ErrCacheIO, path, err)
	}
	defer f2.Close()
	if err := c.Upload(ctx, p, f2); err != nil {
		return Pointer{}, err
	}
	return p, nil
}

// DownloadToFile streams p directly into the cache, then hard-copies it
// into destPath (§4.6 "Streaming file operations").
func (c *Client) DownloadToFile(ctx context.Context, p Pointer, destPath string) error {
	if err := c.DownloadBatch(ctx, []Pointer{p}); err != nil {
		return err
	}
	rc, _, err := c.cache.Open(p.OID())
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %s", ErrCacheIO, destPath, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("%w: writing %s: %s", ErrCacheIO, destPath, err)
	}
	return nil
}
