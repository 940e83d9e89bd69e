package batch

import (
	"fmt"
	"os"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"mazerunner/pkg/engine/world"
)

// SummarySchema is the column layout of the Arrow summary file
var SummarySchema = arrow.NewSchema([]arrow.Field{
	{Name: "run_id", Type: arrow.BinaryTypes.String},
	{Name: "seed", Type: arrow.PrimitiveTypes.Int64},
	{Name: "time", Type: arrow.PrimitiveTypes.Int64},
	{Name: "day", Type: arrow.PrimitiveTypes.Int64},
	{Name: "found_exit", Type: arrow.PrimitiveTypes.Int64},
	{Name: "n_alive", Type: arrow.PrimitiveTypes.Int64},
	{Name: "converged", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "total_reward", Type: arrow.PrimitiveTypes.Float64},
	{Name: "explored_cells", Type: arrow.PrimitiveTypes.Int64},
	{Name: "elapsed_ms", Type: arrow.PrimitiveTypes.Float64},
	// explored_runners[k] owns explored[k]; grids are world.Grid binary encodings
	{Name: "explored_runners", Type: arrow.ListOf(arrow.PrimitiveTypes.Int64)},
	{Name: "explored", Type: arrow.ListOf(arrow.BinaryTypes.Binary)},
}, nil)

// SummaryRecord builds one Arrow record batch holding every summary.
// The caller must Release it.
func SummaryRecord(mem memory.Allocator, summaries []Summary) (arrow.Record, error) {
	b := array.NewRecordBuilder(mem, SummarySchema)
	defer b.Release()

	runnersCol := b.Field(10).(*array.ListBuilder)
	runnerIDs := runnersCol.ValueBuilder().(*array.Int64Builder)
	gridsCol := b.Field(11).(*array.ListBuilder)
	grids := gridsCol.ValueBuilder().(*array.BinaryBuilder)

	for _, s := range summaries {
		b.Field(0).(*array.StringBuilder).Append(s.RunID)
		b.Field(1).(*array.Int64Builder).Append(s.Seed)
		b.Field(2).(*array.Int64Builder).Append(int64(s.Time))
		b.Field(3).(*array.Int64Builder).Append(int64(s.Day))
		b.Field(4).(*array.Int64Builder).Append(int64(s.FoundExit))
		b.Field(5).(*array.Int64Builder).Append(int64(s.NAlive))
		b.Field(6).(*array.BooleanBuilder).Append(s.Converged)
		b.Field(7).(*array.Float64Builder).Append(s.TotalReward)
		b.Field(8).(*array.Int64Builder).Append(int64(s.ExploredCells))
		b.Field(9).(*array.Float64Builder).Append(float64(s.Elapsed.Microseconds()) / 1000)

		runnersCol.Append(true)
		gridsCol.Append(true)
		for _, id := range sortedIDs(s.Explored) {
			data, err := s.Explored[id].MarshalBinary()
			if err != nil {
				return nil, fmt.Errorf("encode run %s runner %d: %w", s.RunID, id, err)
			}
			runnerIDs.Append(int64(id))
			grids.Append(data)
		}
	}
	return b.NewRecord(), nil
}

func sortedIDs(explored map[int]*world.Grid) []int {
	ids := make([]int, 0, len(explored))
	for id := range explored {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// WriteArrow writes the summaries to path as an Arrow IPC file
func WriteArrow(path string, summaries []Summary) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create arrow file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close arrow file: %w", cerr)
		}
	}()

	mem := memory.NewGoAllocator()
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(SummarySchema), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("open arrow writer: %w", err)
	}

	rec, err := SummaryRecord(mem, summaries)
	if err != nil {
		_ = w.Close()
		return err
	}
	defer rec.Release()
	if err := w.Write(rec); err != nil {
		_ = w.Close()
		return fmt.Errorf("write arrow record: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish arrow file: %w", err)
	}
	return nil
}
