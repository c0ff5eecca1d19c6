package cache

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Compress comprime o blob antes da escrita no KeyValueStore. A compressão é
// reversível e não faz parte do formato: qualquer compressor byte-estável serve
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, errors.Wrap(err, "erro ao comprimir dados do cache")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "erro ao finalizar compressão do cache")
	}

	return buf.Bytes(), nil
}

// Decompress reverte a compressão aplicada por Compress
func Decompress(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "erro ao abrir blob comprimido do cache")
	}
	defer reader.Close()

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao descomprimir dados do cache")
	}

	return out, nil
}
