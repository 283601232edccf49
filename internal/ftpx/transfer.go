package ftpx

import (
	"fmt"
	"io"
	gopath "path"
)

// OpenRead starts downloading a file on a fresh child session and returns
// the stream. The caller must Close it; closing marks the child finished
// so the next reap drops it.
func (h *Host) OpenRead(path string) (io.ReadCloser, error) {
	child, err := h.spawnChild()
	if err != nil {
		return nil, err
	}

	conn, err := child.control()
	if err != nil {
		return nil, err
	}
	resp, err := conn.Retr(path)
	if err != nil {
		child.markFinished()
		return nil, fmt.Errorf("retr %s: %w", path, err)
	}

	return &transferReader{body: resp, child: child}, nil
}

// OpenWrite starts uploading to a file on a fresh child session and
// returns the stream. Close flushes the transfer and reports the upload
// result.
func (h *Host) OpenWrite(path string) (io.WriteCloser, error) {
	child, err := h.spawnChild()
	if err != nil {
		return nil, err
	}

	conn, err := child.control()
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		err := conn.Stor(path, pr)
		// Unblock the writer if the upload died mid-stream.
		pr.CloseWithError(err)
		done <- err
	}()

	h.cache.invalidate(gopath.Clean(path))

	return &transferWriter{pw: pw, done: done, child: child, path: path}, nil
}

type transferReader struct {
	body  io.ReadCloser
	child *Host
}

func (r *transferReader) Read(p []byte) (int, error) {
	return r.body.Read(p)
}

func (r *transferReader) Close() error {
	err := r.body.Close()
	r.child.markFinished()
	return err
}

type transferWriter struct {
	pw    *io.PipeWriter
	done  chan error
	child *Host
	path  string
}

func (w *transferWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *transferWriter) Close() error {
	_ = w.pw.Close()
	err := <-w.done
	w.child.markFinished()
	if err != nil {
		return fmt.Errorf("stor %s: %w", w.path, err)
	}
	return nil
}
