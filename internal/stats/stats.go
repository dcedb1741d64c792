package stats

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Statistic accumulates response counts, sizes, and times for the running
// server. Per-second counts reset on a ticker; totals are kept for the
// lifetime of the process.
type Statistic struct {
	mutex           sync.RWMutex
	shutdown        chan struct{}
	Hostname        string
	StartTime       time.Time
	ProcessID       int
	ResponseCounts  map[string]int
	TotalRespCounts map[string]int
	TotalRespTime   time.Duration
	TotalRespSize   int64
}

func NewStatistic() *Statistic {
	hostname, _ := os.Hostname()

	statistic := &Statistic{
		shutdown:        make(chan struct{}, 1),
		StartTime:       time.Now(),
		ProcessID:       os.Getpid(),
		ResponseCounts:  make(map[string]int),
		TotalRespCounts: make(map[string]int),
		Hostname:        hostname,
	}

	go statistic.resetResponseCountsPeriodically()

	return statistic
}

func (stat *Statistic) Close() {
	close(stat.shutdown)
}

func (stat *Statistic) resetResponseCountsPeriodically() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stat.shutdown:
			return
		case <-ticker.C:
			stat.resetResponseCounts()
		}
	}
}

func (stat *Statistic) resetResponseCounts() {
	stat.mutex.Lock()
	defer stat.mutex.Unlock()
	stat.ResponseCounts = make(map[string]int)
}

func (stat *Statistic) StartRecording() (time.Time, *Recorder) {
	return time.Now(), &Recorder{}
}

func (stat *Statistic) EndRecording(startTime time.Time, recorder *Recorder) {
	duration := time.Since(startTime)

	stat.mutex.Lock()
	defer stat.mutex.Unlock()

	if status := recorder.Status(); status != 0 {
		statusCode := fmt.Sprintf("%d", status)
		stat.ResponseCounts[statusCode]++
		stat.TotalRespCounts[statusCode]++
		stat.TotalRespTime += duration
		stat.TotalRespSize += int64(recorder.Size())
	}
}

type StatisticData struct {
	ProcessID            int            `json:"pid"`
	Hostname             string         `json:"hostname"`
	UpTime               string         `json:"uptime"`
	UpTimeSec            float64        `json:"uptime_sec"`
	Time                 string         `json:"time"`
	TimeUnix             int64          `json:"unixtime"`
	StatusCodeCount      map[string]int `json:"status_code_count"`
	TotalStatusCodeCount map[string]int `json:"total_status_code_count"`
	ResponseCount        int            `json:"count"`
	TotalResponseCount   int            `json:"total_count"`
	AverageResponseTime  string         `json:"average_response_time"`
	TotalResponseSize    int64          `json:"total_response_size"`
}

func (stat *Statistic) GatherData() StatisticData {
	stat.mutex.RLock()
	defer stat.mutex.RUnlock()

	now := time.Now()
	uptime := now.Sub(stat.StartTime)

	count := 0
	for _, v := range stat.ResponseCounts {
		count += v
	}
	totalCount := 0
	for _, v := range stat.TotalRespCounts {
		totalCount += v
	}

	avg := time.Duration(0)
	if totalCount > 0 {
		avg = stat.TotalRespTime / time.Duration(totalCount)
	}

	statusCodeCount := make(map[string]int, len(stat.ResponseCounts))
	for k, v := range stat.ResponseCounts {
		statusCodeCount[k] = v
	}
	totalStatusCodeCount := make(map[string]int, len(stat.TotalRespCounts))
	for k, v := range stat.TotalRespCounts {
		totalStatusCodeCount[k] = v
	}

	return StatisticData{
		ProcessID:            stat.ProcessID,
		Hostname:             stat.Hostname,
		UpTime:               uptime.String(),
		UpTimeSec:            uptime.Seconds(),
		Time:                 now.String(),
		TimeUnix:             now.Unix(),
		StatusCodeCount:      statusCodeCount,
		TotalStatusCodeCount: totalStatusCodeCount,
		ResponseCount:        count,
		TotalResponseCount:   totalCount,
		AverageResponseTime:  avg.String(),
		TotalResponseSize:    stat.TotalRespSize,
	}
}
