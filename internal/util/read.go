package util

import (
	"bytes"
	"io"
)

// ReadAllProgress reads src to EOF, reporting the running byte count after
// every chunk.
func ReadAllProgress(src io.Reader, progress func(done int64)) ([]byte, error) {
	var out bytes.Buffer
	buf := make([]byte, 32*1024)
	var total int64

	for {
		nr, er := src.Read(buf)

		if nr > 0 {
			out.Write(buf[:nr])
			total += int64(nr)
			if progress != nil {
				progress(total)
			}
		}

		if er != nil {
			if er == io.EOF {
				break
			}
			return out.Bytes(), er
		}
	}

	return out.Bytes(), nil
}
