package table

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"

	"github.com/apache/arrow-go/v18/arrow/ipc"

	"github.com/gframe-dev/gframe/pkg/compression"
	"github.com/gframe-dev/gframe/pkg/device"
	"github.com/gframe-dev/gframe/pkg/errors"
	"github.com/gframe-dev/gframe/pkg/metrics"
	"github.com/gframe-dev/gframe/pkg/observability"
)

// Snapshot layout: magic, algorithm name, metadata JSON, then the
// (optionally compressed) Arrow IPC stream carrying one record.
var snapshotMagic = []byte("GFRSNAP1")

// Header length fields are bounded before allocation so a corrupt header
// cannot demand arbitrary memory.
const (
	maxSnapshotMetadataBytes = 16 << 20
	maxSnapshotPayloadBytes  = 1 << 40
)

// Serialize writes the table as a self-describing snapshot: the supplied
// metadata travels in the header, and the column data goes as an Arrow
// IPC stream wrapped in the chosen compression.
func (t *Table) Serialize(ctx context.Context, w io.Writer, algo compression.Algorithm, meta []ColumnMetadata) error {
	ctx, end := observability.StartSpan(ctx, "table.Serialize")

	rec, err := t.ToArrow(ctx, meta)
	if err != nil {
		end(err)
		return err
	}
	defer rec.Release()

	var body bytes.Buffer
	ipcw := ipc.NewWriter(&body, ipc.WithSchema(rec.Schema()))
	if err := ipcw.Write(rec); err != nil {
		end(err)
		return errors.Wrap(err, errors.ErrorTypeInternal, "write interchange stream")
	}
	if err := ipcw.Close(); err != nil {
		end(err)
		return errors.Wrap(err, errors.ErrorTypeInternal, "close interchange stream")
	}

	comp, err := compression.NewCompressor(algo)
	if err != nil {
		end(err)
		return err
	}
	payload, err := comp.Compress(body.Bytes())
	if err != nil {
		end(err)
		return err
	}

	metaJSON, err := EncodeMetadata(meta)
	if err != nil {
		end(err)
		return err
	}

	if err := writeSnapshot(w, algo, metaJSON, payload); err != nil {
		end(err)
		return err
	}

	metrics.SnapshotBytes.Add(float64(len(payload)))
	end(nil)
	return nil
}

// Deserialize reads a snapshot back into a new owning table, returning
// the column metadata stored in the header.
func Deserialize(ctx context.Context, rt *device.Runtime, r io.Reader) (*Table, []ColumnMetadata, error) {
	ctx, end := observability.StartSpan(ctx, "table.Deserialize")

	algo, metaJSON, payload, err := readSnapshot(r)
	if err != nil {
		end(err)
		return nil, nil, err
	}

	meta, err := DecodeMetadata(metaJSON)
	if err != nil {
		end(err)
		return nil, nil, err
	}

	comp, err := compression.NewCompressor(algo)
	if err != nil {
		end(err)
		return nil, nil, err
	}
	body, err := comp.Decompress(payload)
	if err != nil {
		end(err)
		return nil, nil, err
	}

	ipcr, err := ipc.NewReader(bytes.NewReader(body))
	if err != nil {
		end(err)
		return nil, nil, errors.Wrap(err, errors.ErrorTypeStructureMismatch, "open interchange stream")
	}
	defer ipcr.Release()

	if !ipcr.Next() {
		err := errors.New(errors.ErrorTypeStructureMismatch, "snapshot carries no record")
		end(err)
		return nil, nil, err
	}

	tbl, err := FromArrow(ctx, rt, ipcr.Record())
	if err != nil {
		end(err)
		return nil, nil, err
	}

	end(nil)
	return tbl, meta, nil
}

func writeSnapshot(w io.Writer, algo compression.Algorithm, metaJSON, payload []byte) error {
	if _, err := w.Write(snapshotMagic); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "write snapshot header")
	}
	name := []byte(algo)
	if err := binary.Write(w, binary.LittleEndian, uint8(len(name))); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "write snapshot header")
	}
	if _, err := w.Write(name); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "write snapshot header")
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(metaJSON))); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "write snapshot header")
	}
	if _, err := w.Write(metaJSON); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "write snapshot header")
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(payload))); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "write snapshot header")
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "write snapshot payload")
	}
	return nil
}

func readSnapshot(r io.Reader) (compression.Algorithm, []byte, []byte, error) {
	magic := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return "", nil, nil, errors.Wrap(err, errors.ErrorTypeStructureMismatch, "read snapshot header")
	}
	if !bytes.Equal(magic, snapshotMagic) {
		return "", nil, nil, errors.New(errors.ErrorTypeStructureMismatch, "not a table snapshot")
	}

	var nameLen uint8
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return "", nil, nil, errors.Wrap(err, errors.ErrorTypeStructureMismatch, "read snapshot header")
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return "", nil, nil, errors.Wrap(err, errors.ErrorTypeStructureMismatch, "read snapshot header")
	}

	var metaLen uint32
	if err := binary.Read(r, binary.LittleEndian, &metaLen); err != nil {
		return "", nil, nil, errors.Wrap(err, errors.ErrorTypeStructureMismatch, "read snapshot header")
	}
	if metaLen > maxSnapshotMetadataBytes {
		return "", nil, nil, errors.Newf(errors.ErrorTypeStructureMismatch,
			"snapshot metadata length %d exceeds limit %d", metaLen, maxSnapshotMetadataBytes)
	}
	metaJSON := make([]byte, metaLen)
	if _, err := io.ReadFull(r, metaJSON); err != nil {
		return "", nil, nil, errors.Wrap(err, errors.ErrorTypeStructureMismatch, "read snapshot header")
	}

	var payloadLen uint64
	if err := binary.Read(r, binary.LittleEndian, &payloadLen); err != nil {
		return "", nil, nil, errors.Wrap(err, errors.ErrorTypeStructureMismatch, "read snapshot header")
	}
	if payloadLen > maxSnapshotPayloadBytes {
		return "", nil, nil, errors.Newf(errors.ErrorTypeStructureMismatch,
			"snapshot payload length %d exceeds limit %d", payloadLen, maxSnapshotPayloadBytes)
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return "", nil, nil, errors.Wrap(err, errors.ErrorTypeStructureMismatch, "read snapshot payload")
	}
	return compression.Algorithm(name), metaJSON, payload, nil
}
