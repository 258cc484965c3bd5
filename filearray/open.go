package filearray

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"
	"time"

	"github.com/joshuapare/arraykit/internal/buf"
	"github.com/joshuapare/arraykit/internal/format"
	"github.com/joshuapare/arraykit/pkg/types"
)

// CreateBase opens the array file at path, creating it when missing.
//
// An existing file must be writable, must start with signature and, when its
// lock bit says another instance has it open, is handled according to policy.
// An empty existing file is initialised as a new store. On success the lock
// bit is set until Close.
//
// Errors are *types.Error values; use errors.Is with the types sentinels or
// types.KindOf to branch on them.
func CreateBase(ctx context.Context, path string, signature []byte, policy OpenPolicy, opts *Options) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := opts.resolve()
	log := o.Logger.With("path", path)

	fi, err := os.Stat(path)
	exists := err == nil
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, types.Classify(err)
	case fi.IsDir():
		return nil, types.New(types.KindUnexpected, path, errors.New("is a directory"))
	case fi.Mode().Perm()&0o222 == 0:
		return nil, types.New(types.KindFileNotWritable, path, nil)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		if exists && (errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.EROFS)) {
			return nil, types.New(types.KindFileNotWritable, path, err)
		}
		return nil, types.Classify(err)
	}

	s := newStore(o)
	s.f = f
	s.path = path
	s.sig = append([]byte(nil), signature...)
	s.log = log.With("store", s.serial)

	if err := s.openBase(ctx, policy); err != nil {
		_ = f.Close()
		return nil, err
	}
	s.log.Debug("store opened", "records", s.idx.Len(), "size", s.alloc, "policy", policy)
	return s, nil
}

func (s *Store) openBase(ctx context.Context, policy OpenPolicy) error {
	size, err := s.fileSize()
	if err != nil {
		return err
	}
	if size == 0 {
		return s.initEmpty()
	}

	if err := s.checkSignature(size); err != nil {
		return err
	}
	h, err := s.readHeader()
	if err != nil {
		return types.New(types.KindUnexpected, s.path, err)
	}

	if h.Locked {
		var reset bool
		h, reset, err = s.applyPolicy(ctx, policy, h)
		if err != nil {
			return err
		}
		if reset {
			if err := s.f.Truncate(0); err != nil {
				return types.Classify(err)
			}
			return s.initEmpty()
		}
		if size, err = s.fileSize(); err != nil {
			return err
		}
	}

	if err := s.load(h, size); err != nil {
		return err
	}
	if err := s.writeCountField(true); err != nil {
		return types.Classify(err)
	}
	if err := s.syncHandle(); err != nil {
		return types.Classify(err)
	}
	return nil
}

// applyPolicy decides what to do about a set lock bit. It returns the latest
// header and whether the file must be discarded.
func (s *Store) applyPolicy(ctx context.Context, policy OpenPolicy, h format.Header) (format.Header, bool, error) {
	switch policy {
	case IgnoreIfOpen:
		s.log.Info("lock bit set, opening anyway")
		return h, false, nil
	case DeleteIfOpen:
		s.log.Warn("lock bit set, discarding file contents")
		return h, true, nil
	case WaitThenFail, WaitThenDelete:
		for i := 0; i < s.opts.RetryCount && h.Locked; i++ {
			s.log.Debug("lock bit set, waiting", "attempt", i+1, "delay", s.opts.RetryDelay)
			if err := sleep(ctx, s.opts.RetryDelay); err != nil {
				return h, false, err
			}
			var err error
			if h, err = s.readHeader(); err != nil {
				return h, false, types.New(types.KindUnexpected, s.path, err)
			}
		}
		if !h.Locked {
			return h, false, nil
		}
		if policy == WaitThenDelete {
			s.log.Warn("lock bit still set after waiting, discarding file contents")
			return h, true, nil
		}
	}
	return h, false, types.New(types.KindFileAlreadyOpen, s.path, nil)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Store) fileSize() (int64, error) {
	fi, err := s.f.Stat()
	if err != nil {
		return 0, types.Classify(err)
	}
	return fi.Size(), nil
}

func (s *Store) checkSignature(size int64) error {
	b := make([]byte, min(size, s.sigLen()))
	if err := s.readAt(b, 0); err != nil {
		return types.Classify(err)
	}
	if err := format.CheckSignature(b, s.sig); err != nil {
		return types.New(types.KindWrongSignature, s.path, err)
	}
	return nil
}

func (s *Store) readHeader() (format.Header, error) {
	var b [format.HeaderSize]byte
	if err := s.readAt(b[:], s.sigLen()); err != nil {
		return format.Header{}, err
	}
	return format.ParseHeader(b[:])
}

// initEmpty writes the header of an empty store into a zero-length region.
func (s *Store) initEmpty() error {
	s.version = s.opts.Version
	s.indexOffset = format.FirstRecordOffset
	s.dirty = true
	if s.parent == nil {
		if err := s.writeAt(s.sig, 0); err != nil {
			return types.Classify(err)
		}
		s.alloc = s.sigLen()
	}
	if err := s.setAllocation(s.sigLen() + format.HeaderSize); err != nil {
		return types.Classify(err)
	}
	if err := s.writeMeta(); err != nil {
		return types.Classify(err)
	}
	if err := s.syncHandle(); err != nil {
		return types.Classify(err)
	}
	s.log.Debug("initialised empty store", "version", s.version)
	return nil
}

// load reads the index described by h from a region of size bytes.
func (s *Store) load(h format.Header, size int64) error {
	start := s.sigLen() + int64(h.IndexOffset)
	end, err := buf.CheckListBounds(size, start, int64(h.Count), format.EntrySize)
	if err != nil {
		return types.New(types.KindUnexpected, s.path, fmt.Errorf("index: %w", err))
	}

	idxLen := end - start
	if err := s.idx.ReadFromStream(io.NewSectionReader(regionReader{s}, start, idxLen), int(h.Count)); err != nil {
		return types.New(types.KindUnexpected, s.path, err)
	}
	for _, e := range s.idx.Entries() {
		if e.Offset < format.FirstRecordOffset || int64(e.Offset)+format.LengthPrefixSize > int64(h.IndexOffset) {
			return types.New(types.KindUnexpected, s.path,
				fmt.Errorf("record %d offset %d outside data section: %w", e.ID, e.Offset, format.ErrBadIndexOffset))
		}
	}

	s.version = h.Version
	s.indexOffset = h.IndexOffset
	s.alloc = size
	if end < size {
		s.log.Info("trimming trailing bytes", "from", size, "to", end)
		if err := s.setAllocation(end); err != nil {
			return types.Classify(err)
		}
	}
	return nil
}

// CreateEmbedded opens the store held in the record with the given ID of
// parent. The record must have been inserted with InsertEmbeddedAt and must
// not already have an open store. An empty record is initialised as an empty
// store.
//
// nil opts inherit the parent's options, except for the Sink.
func CreateEmbedded(parent *Store, id uint32, opts *Options) (*Store, error) {
	parent.mustBeOpen()
	path := parent.Path()
	pos, ok := parent.idx.PositionOfID(id)
	switch {
	case !ok:
		return nil, types.New(types.KindNotFound, path, fmt.Errorf("record %d", id))
	case !parent.idx.IsEmbedded(pos):
		return nil, types.New(types.KindNotEmbeddedFile, path, fmt.Errorf("record %d", id))
	case !parent.idx.IsEmbeddedClosed(pos):
		return nil, types.New(types.KindFileAlreadyOpen, path, fmt.Errorf("record %d", id))
	}

	var o Options
	if opts == nil {
		o = parent.opts
		o.Sink = nil
	} else {
		o = opts.resolve()
	}
	s := newStore(o)
	s.parent = parent
	s.parentID = id
	s.log = parent.log.With("embedded", id, "store", s.serial)

	n, err := parent.recordLen(pos)
	if err != nil {
		return nil, types.Classify(err)
	}
	s.alloc = int64(n)

	switch {
	case n == 0:
		if err := s.initEmpty(); err != nil {
			return nil, err
		}
	case n < format.HeaderSize:
		return nil, types.New(types.KindUnexpected, path, fmt.Errorf("embedded record %d: %w", id, format.ErrTruncated))
	default:
		h, err := s.readHeader()
		if err != nil {
			return nil, types.New(types.KindUnexpected, path, fmt.Errorf("embedded record %d: %w", id, err))
		}
		if h.Locked {
			// Only reachable after a crash; the enclosing file's lock bit guards access.
			s.log.Debug("embedded lock bit left set")
		}
		if err := s.load(h, int64(n)); err != nil {
			return nil, err
		}
		if err := s.writeCountField(true); err != nil {
			return nil, types.Classify(err)
		}
		if err := s.syncHandle(); err != nil {
			return nil, types.Classify(err)
		}
	}

	parent.idx.EmbeddedOpened(parent.mustPositionOf(id), s.serial)
	s.log.Debug("embedded store opened", "records", s.idx.Len(), "size", s.alloc)
	return s, nil
}
