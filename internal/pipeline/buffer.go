// Copyright 2025 the rawscan authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

// rowBuffer is a ring of the most recently pulled upstream rows. Its
// capacity is exactly the lookback depth of the owning node; pushing onto a
// full buffer discards the oldest row.
type rowBuffer struct {
	rows  [][]byte
	start int
	count int
}

func newRowBuffer(rowBytes, capacity int) *rowBuffer {
	rows := make([][]byte, capacity)
	for i := range rows {
		rows[i] = make([]byte, rowBytes)
	}
	return &rowBuffer{rows: rows}
}

func (b *rowBuffer) full() bool { return b.count == len(b.rows) }

// pushBack returns the storage for the newest row, to be filled by the
// caller. When the buffer is full the oldest row is discarded.
func (b *rowBuffer) pushBack() []byte {
	if b.count < len(b.rows) {
		i := (b.start + b.count) % len(b.rows)
		b.count++
		return b.rows[i]
	}
	i := b.start
	b.start = (b.start + 1) % len(b.rows)
	return b.rows[i]
}

// row returns the i-th buffered row, oldest first.
func (b *rowBuffer) row(i int) []byte {
	return b.rows[(b.start+i)%len(b.rows)]
}

func (b *rowBuffer) clear() {
	b.start = 0
	b.count = 0
}

// chunkBuffer bridges a chunk-oriented producer and row-oriented reads: the
// producer only yields batches of len(buf) bytes, while reads may be any
// size and need not align with batch boundaries.
type chunkBuffer struct {
	producer Producer
	buf      []byte
	pos      int // bytes already consumed
	valid    int // bytes filled by the producer
}

func newChunkBuffer(batchSize int, producer Producer) *chunkBuffer {
	return &chunkBuffer{producer: producer, buf: make([]byte, batchSize)}
}

func (b *chunkBuffer) size() int      { return len(b.buf) }
func (b *chunkBuffer) available() int { return b.valid - b.pos }

// read fills out from the buffer, asking the producer for exactly one batch
// whenever the buffer runs empty. The producer is never asked for more than
// the batch size at once.
func (b *chunkBuffer) read(out []byte) error {
	for len(out) > 0 {
		if b.pos == b.valid {
			if err := b.producer(b.buf); err != nil {
				return err
			}
			b.pos = 0
			b.valid = len(b.buf)
		}
		n := copy(out, b.buf[b.pos:b.valid])
		b.pos += n
		out = out[n:]
	}
	return nil
}

// ChunkModel describes the sizes in which a scanner chipset delivers image
// data over the transport. The chipset pipeline is a sequence of buffer
// stages, each of which truncates a transfer to a whole multiple of its row
// granularity; the effective transfer size is the smallest stage size. The
// chipset may additionally pad the total transfer with trailing zero bytes
// to satisfy alignment, which the source reads and discards.
type ChunkModel struct {
	chunk   int
	padding int
}

// PushStage appends a buffer stage of bufferSize bytes operating at a
// granularity of rowBytes. It returns the model for chaining.
func (m ChunkModel) PushStage(bufferSize, rowBytes int) ChunkModel {
	size := bufferSize - bufferSize%rowBytes
	if m.chunk == 0 || size < m.chunk {
		m.chunk = size
	}
	return m
}

// PushZeroPadding appends n trailing zero bytes to the total transfer.
func (m ChunkModel) PushZeroPadding(n int) ChunkModel {
	m.padding += n
	return m
}

// Padding reports the number of trailing zero bytes the transport appends.
func (m ChunkModel) Padding() int { return m.padding }

// TransferSize reports the size of the next transfer given the number of
// bytes still to be transferred. The final transfer is the remainder and
// may be smaller than the regular chunk size.
func (m ChunkModel) TransferSize(remaining int) int {
	if remaining <= 0 {
		return 0
	}
	if m.chunk == 0 || remaining < m.chunk {
		return remaining
	}
	return m.chunk
}

// chunkedBuffer is like chunkBuffer, but transfer sizes follow a ChunkModel
// over a fixed total instead of a uniform batch size.
type chunkedBuffer struct {
	producer  Producer
	model     ChunkModel
	remaining int // padded bytes still to transfer
	buf       []byte
	pos       int
	valid     int
}

func newChunkedBuffer(totalSize int, model ChunkModel, producer Producer) *chunkedBuffer {
	padded := totalSize + model.Padding()
	size := model.TransferSize(padded)
	return &chunkedBuffer{
		producer:  producer,
		model:     model,
		remaining: padded,
		buf:       make([]byte, size),
	}
}

func (b *chunkedBuffer) available() int { return b.valid - b.pos }

func (b *chunkedBuffer) read(out []byte) error {
	for len(out) > 0 {
		if b.pos == b.valid {
			n := b.model.TransferSize(b.remaining)
			if n == 0 {
				return ErrExhausted
			}
			if err := b.producer(b.buf[:n]); err != nil {
				return err
			}
			b.remaining -= n
			b.pos = 0
			b.valid = n
		}
		n := copy(out, b.buf[b.pos:b.valid])
		b.pos += n
		out = out[n:]
	}
	return nil
}
