package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vosui/vps-go/devlog"
)

var (
	filterVeh int32 // 只输出指定车辆的记录，-1表示全部
	limit     int   // 输出记录数上限，0表示不限
	statsOnly bool  // 只输出统计摘要
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.bin>",
	Short: "Parse an edge transit log and print records with per-type statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().Int32Var(&filterVeh, "veh", -1, "only show records of this vehicle id")
	parseCmd.Flags().IntVar(&limit, "limit", 0, "max records to print (0 means unlimited)")
	parseCmd.Flags().BoolVar(&statsOnly, "stats", false, "print summary statistics only")
}

// typeStats 单个Edge类型的通行统计
type typeStats struct {
	count     int
	transitMs uint64
	speedSum  float64
}

func runParse(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil && info.Size()%devlog.TransitRecordSize != 0 {
		fmt.Fprintf(os.Stderr, "warning: file size %d is not a multiple of record size %d, tail ignored\n",
			info.Size(), devlog.TransitRecordSize)
	}

	reader := devlog.NewTransitReader(file)
	stats := make(map[devlog.EdgeType]*typeStats)
	total, printed := 0, 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if filterVeh >= 0 && rec.VehID != uint32(filterVeh) {
			continue
		}
		total++

		s, ok := stats[rec.EdgeType]
		if !ok {
			s = &typeStats{}
			stats[rec.EdgeType] = s
		}
		s.count++
		s.transitMs += uint64(rec.TransitTime())
		s.speedSum += rec.Speed()

		if statsOnly || (limit > 0 && printed >= limit) {
			continue
		}
		fmt.Printf("%10dms W%d F%d %-6s veh=%-6d transit=%6dms len=%5.2fm speed=%4.2fm/s %s\n",
			rec.Timestamp, rec.WorkerID, rec.FabID,
			devlog.EdgeName(int32(rec.EdgeID)), rec.VehID,
			rec.TransitTime(), rec.EdgeLength, rec.Speed(), rec.EdgeType)
		printed++
	}

	fmt.Printf("\n%d records\n", total)
	fmt.Printf("%-12s %8s %12s %12s\n", "type", "count", "avg transit", "avg speed")
	for t := devlog.EdgeLinear; t <= devlog.EdgeRightCurve; t++ {
		s, ok := stats[t]
		if !ok {
			continue
		}
		fmt.Printf("%-12s %8d %10.0fms %9.2fm/s\n",
			t, s.count,
			float64(s.transitMs)/float64(s.count),
			s.speedSum/float64(s.count))
	}
	return nil
}
