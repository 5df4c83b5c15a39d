package monitor_api

import (
	"math"
	"net/http"
	"time"

	"github.com/pipeos/pipes/src/utils/monitoring/report"
	"github.com/pipeos/pipes/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int

	collector *Collector

	// Function derivation speed
	FunctionsDerived *deque.Deque[uint64]
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:            &report.RunReport{},
		Api:            &report.ApiReport{},
		Ingester:       &report.IngesterReport{},
		RedisPublisher: &report.RedisPublisherReport{},
		Sweeper:        &report.SweeperReport{},
	}

	// Initialization
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorFunctions)

	return self.WithMaxHistorySize(30)
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize
	self.FunctionsDerived = deque.New[uint64](self.historySize)
	return self
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Measure function derivation speed
func (self *Monitor) monitorFunctions() (err error) {
	loaded := self.Report.Ingester.State.FunctionsDerived.Load()

	self.FunctionsDerived.PushBack(loaded)
	if self.FunctionsDerived.Len() > self.historySize {
		self.FunctionsDerived.PopFront()
	}
	value := float64(self.FunctionsDerived.Back()-self.FunctionsDerived.Front()) / float64(self.FunctionsDerived.Len())

	self.Report.Ingester.State.AverageFunctionsDerivedPerMinute.Store(round(value))
	return
}

func (self *Monitor) fill() {
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load()))
}

// Healthy as long as rollbacks succeed
func (self *Monitor) IsOK() bool {
	return self.Report.Ingester.Errors.RollbackFailed.Load() == 0
}

func (self *Monitor) OnGetState(c *gin.Context) {
	self.fill()
	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
