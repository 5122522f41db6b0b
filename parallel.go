package pivot

import (
	"bufio"
	"io"

	"github.com/creachadair/taskgroup"
)

// batchSize is the number of input lines handed to one parallel worker task.
const batchSize = 4096

// ReadFromParallel reads records from r as ReadFrom does, but partitions the
// input into batches of consecutive lines parsed and accumulated by up to
// workers concurrent tasks, each folding into a private shard table. The
// shards are merged in input order once the reader is exhausted, so the
// result is identical to a sequential ReadFrom, including the order of
// allvalues sequences. With workers < 2 it falls back to ReadFrom.
//
// Reading the stream itself remains sequential; the parallelism covers
// splitting and accumulation only, so it pays off when the aggregate set or
// the records are wide.
func (t *Table) ReadFromParallel(r io.Reader, workers int) (int64, error) {
	if workers < 2 {
		return t.ReadFrom(r)
	}

	type shard struct {
		index int
		tab   *Table
	}
	shards := make(map[int]*Table)
	g, start := taskgroup.New(nil).Limit(workers)
	coll := taskgroup.Collect(func(s shard) { shards[s.index] = s.tab })

	var n int64
	var nbatch int
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineSize)

	batch := make([]string, 0, batchSize)
	flush := func() {
		lines := batch
		index := nbatch
		nbatch++
		batch = make([]string, 0, batchSize)
		start(coll.Call(func() (shard, error) {
			st := New(t.spec)
			for _, line := range lines {
				st.Add(splitRecord(line))
			}
			return shard{index: index, tab: st}, nil
		}))
	}
	for sc.Scan() {
		batch = append(batch, sc.Text())
		n++
		if len(batch) == batchSize {
			flush()
		}
	}
	if len(batch) != 0 {
		flush()
	}
	if err := g.Wait(); err != nil {
		return n, err
	}
	if err := sc.Err(); err != nil {
		return n, err
	}
	for i := 0; i < nbatch; i++ {
		if err := t.Merge(shards[i]); err != nil {
			return n, err
		}
	}
	return n, nil
}
