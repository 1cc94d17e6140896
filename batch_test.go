package lfs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBatchRequestDefaultsToBasicTransfer(t *testing.T) {
	req := NewBatchRequest(BatchUpload, []BatchRequestObject{{OID: OID(testOIDHex), Size: 10}})
	assert.Equal(t, []string{"basic"}, req.Transfers)
	assert.Equal(t, BatchUpload, req.Operation)
}

func TestBatchRequestJSONShape(t *testing.T) {
	req := NewBatchRequest(BatchDownload, []BatchRequestObject{{OID: OID(testOIDHex), Size: 42}})
	req.Ref = &RefInfo{Name: "refs/heads/main"}

	b, err := json.Marshal(req)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "download", raw["operation"])
	assert.Equal(t, map[string]any{"name": "refs/heads/main"}, raw["ref"])
}

func TestBatchResponseObjectActionAccessors(t *testing.T) {
	obj := BatchResponseObject{
		OID:  OID(testOIDHex),
		Size: 10,
		Actions: map[string]Action{
			"upload": {Href: "https://example.com/upload"},
			"verify": {Href: "https://example.com/verify"},
		},
	}

	upload, ok := obj.UploadAction()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/upload", upload.Href)

	_, ok = obj.DownloadAction()
	assert.False(t, ok)

	verify, ok := obj.VerifyAction()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/verify", verify.Href)

	assert.False(t, obj.HasError())
}

func TestBatchResponseObjectHasError(t *testing.T) {
	obj := BatchResponseObject{
		OID:   OID(testOIDHex),
		Error: &BatchError{Code: 422, Message: "validation failed"},
	}
	assert.True(t, obj.HasError())
	assert.Equal(t, "lfs batch error 422: validation failed", obj.Error.Error())
}

func TestBatchResponseUnmarshal(t *testing.T) {
	raw := `{
		"transfer": "basic",
		"objects": [
			{
				"oid": "` + testOIDHex + `",
				"size": 10,
				"authenticated": true,
				"actions": {
					"download": {"href": "https://example.com/d", "header": {"Authorization": "Bearer x"}}
				}
			}
		]
	}`
	var resp BatchResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Len(t, resp.Objects, 1)
	assert.Equal(t, OID(testOIDHex), resp.Objects[0].OID)
	download, ok := resp.Objects[0].DownloadAction()
	require.True(t, ok)
	assert.Equal(t, "Bearer x", download.Header["Authorization"])
}
