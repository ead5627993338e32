package worker

import (
	"archive/zip"
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest"
)

const envJSON = `{
  "assetAdministrationShells": [{
    "modelType": "AssetAdministrationShell",
    "id": "urn:aas:motor",
    "idShort": "Motor",
    "assetInformation": {"assetKind": "Instance", "globalAssetId": "urn:asset:motor"}
  }]
}`

func TestPoolParse(t *testing.T) {
	pool := NewPool(2, aasxingest.Options{Strict: true})
	defer pool.Shutdown()

	result, err := pool.Parse(context.Background(), []byte(envJSON), "env.json")
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestPoolParseError(t *testing.T) {
	pool := NewPool(1, aasxingest.Options{})
	defer pool.Shutdown()

	_, err := pool.Parse(context.Background(), nil, "empty.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Empty File")
}

func TestPoolParseConcurrent(t *testing.T) {
	pool := NewPool(4, aasxingest.Options{Strict: true})
	defer pool.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := pool.Parse(context.Background(), []byte(envJSON), "env.json")
			assert.NoError(t, err)
			assert.NotNil(t, result)
		}()
	}
	wg.Wait()
}

func TestPoolExtract(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("docs/manual.pdf")
	require.NoError(t, err)
	_, err = f.Write([]byte("%PDF"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	pool := NewPool(1, aasxingest.Options{})
	defer pool.Shutdown()

	data, contentType, err := pool.Extract(context.Background(), buf.Bytes(), "docs/manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)
	assert.Equal(t, "application/pdf", contentType)

	_, _, err = pool.Extract(context.Background(), buf.Bytes(), "missing.txt")
	assert.Error(t, err)
}

func TestPoolShutdownRejectsWork(t *testing.T) {
	pool := NewPool(1, aasxingest.Options{})
	require.NoError(t, pool.Shutdown())

	_, err := pool.Parse(context.Background(), []byte(envJSON), "env.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shut down")
}

func TestPoolParseCancelledContext(t *testing.T) {
	pool := NewPool(1, aasxingest.Options{})
	defer pool.Shutdown()

	// occupy the only worker: it blocks delivering to an unread reply channel
	busy := make(chan ParseReply)
	pool.parses <- ParseRequest{Data: []byte(envJSON), Filename: "env.json", Reply: busy}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pool.Parse(ctx, []byte(envJSON), "env.json")
	assert.ErrorIs(t, err, context.Canceled)

	<-busy // release the worker so Shutdown can finish
}
