package monitor_api

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Api
	ContainersCreated *prometheus.Desc
	ContainersDeleted *prometheus.Desc
	FunctionsDeleted  *prometheus.Desc

	// Ingester
	DerivationsStarted               *prometheus.Desc
	DerivationsFinished              *prometheus.Desc
	RollbacksFinished                *prometheus.Desc
	FunctionsDerived                 *prometheus.Desc
	AverageFunctionsDerivedPerMinute *prometheus.Desc

	// Redis publisher
	MessagesPublished *prometheus.Desc

	// Sweeper
	FunctionsSwept *prometheus.Desc

	// Errors
	DbError                 *prometheus.Desc
	RateLimited             *prometheus.Desc
	DbFunctionInsert        *prometheus.Desc
	FunctionNotFound        *prometheus.Desc
	DerivationFailed        *prometheus.Desc
	RollbackFailed          *prometheus.Desc
	PublishError            *prometheus.Desc
	PublishPersistentFailed *prometheus.Desc
	SweepError              *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "pipes",
	}

	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, labels),

		ContainersCreated: prometheus.NewDesc("containers_created", "", nil, labels),
		ContainersDeleted: prometheus.NewDesc("containers_deleted", "", nil, labels),
		FunctionsDeleted:  prometheus.NewDesc("functions_deleted", "", nil, labels),

		DerivationsStarted:               prometheus.NewDesc("derivations_started", "", nil, labels),
		DerivationsFinished:              prometheus.NewDesc("derivations_finished", "", nil, labels),
		RollbacksFinished:                prometheus.NewDesc("rollbacks_finished", "", nil, labels),
		FunctionsDerived:                 prometheus.NewDesc("functions_derived", "", nil, labels),
		AverageFunctionsDerivedPerMinute: prometheus.NewDesc("average_functions_derived_per_minute", "", nil, labels),

		MessagesPublished: prometheus.NewDesc("redis_messages_published", "", nil, labels),

		FunctionsSwept: prometheus.NewDesc("sweeper_functions_removed", "", nil, labels),

		// Errors
		DbError:                 prometheus.NewDesc("error_api_db", "", nil, labels),
		RateLimited:             prometheus.NewDesc("error_api_rate_limited", "", nil, labels),
		DbFunctionInsert:        prometheus.NewDesc("error_db_function_insert", "", nil, labels),
		FunctionNotFound:        prometheus.NewDesc("error_function_not_found", "", nil, labels),
		DerivationFailed:        prometheus.NewDesc("error_derivation", "", nil, labels),
		RollbackFailed:          prometheus.NewDesc("error_rollback", "", nil, labels),
		PublishError:            prometheus.NewDesc("error_redis_publish", "", nil, labels),
		PublishPersistentFailed: prometheus.NewDesc("error_redis_publish_persistent", "", nil, labels),
		SweepError:              prometheus.NewDesc("error_sweep", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	// Run
	ch <- self.UpForSeconds

	// Api
	ch <- self.ContainersCreated
	ch <- self.ContainersDeleted
	ch <- self.FunctionsDeleted

	// Ingester
	ch <- self.DerivationsStarted
	ch <- self.DerivationsFinished
	ch <- self.RollbacksFinished
	ch <- self.FunctionsDerived
	ch <- self.AverageFunctionsDerivedPerMinute

	ch <- self.MessagesPublished
	ch <- self.FunctionsSwept

	// Errors
	ch <- self.DbError
	ch <- self.RateLimited
	ch <- self.DbFunctionInsert
	ch <- self.FunctionNotFound
	ch <- self.DerivationFailed
	ch <- self.RollbackFailed
	ch <- self.PublishError
	ch <- self.PublishPersistentFailed
	ch <- self.SweepError
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	report := self.monitor.GetReport()
	self.monitor.fill()

	// Run
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(report.Run.State.UpForSeconds.Load()))

	// Api
	ch <- prometheus.MustNewConstMetric(self.ContainersCreated, prometheus.CounterValue, float64(report.Api.State.ContainersCreated.Load()))
	ch <- prometheus.MustNewConstMetric(self.ContainersDeleted, prometheus.CounterValue, float64(report.Api.State.ContainersDeleted.Load()))
	ch <- prometheus.MustNewConstMetric(self.FunctionsDeleted, prometheus.CounterValue, float64(report.Api.State.FunctionsDeleted.Load()))

	// Ingester
	ch <- prometheus.MustNewConstMetric(self.DerivationsStarted, prometheus.CounterValue, float64(report.Ingester.State.DerivationsStarted.Load()))
	ch <- prometheus.MustNewConstMetric(self.DerivationsFinished, prometheus.CounterValue, float64(report.Ingester.State.DerivationsFinished.Load()))
	ch <- prometheus.MustNewConstMetric(self.RollbacksFinished, prometheus.CounterValue, float64(report.Ingester.State.RollbacksFinished.Load()))
	ch <- prometheus.MustNewConstMetric(self.FunctionsDerived, prometheus.CounterValue, float64(report.Ingester.State.FunctionsDerived.Load()))
	ch <- prometheus.MustNewConstMetric(self.AverageFunctionsDerivedPerMinute, prometheus.GaugeValue, report.Ingester.State.AverageFunctionsDerivedPerMinute.Load())

	ch <- prometheus.MustNewConstMetric(self.MessagesPublished, prometheus.CounterValue, float64(report.RedisPublisher.State.MessagesPublished.Load()))
	ch <- prometheus.MustNewConstMetric(self.FunctionsSwept, prometheus.CounterValue, float64(report.Sweeper.State.FunctionsRemoved.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.DbError, prometheus.CounterValue, float64(report.Api.Errors.DbError.Load()))
	ch <- prometheus.MustNewConstMetric(self.RateLimited, prometheus.CounterValue, float64(report.Api.Errors.RateLimited.Load()))
	ch <- prometheus.MustNewConstMetric(self.DbFunctionInsert, prometheus.CounterValue, float64(report.Ingester.Errors.DbFunctionInsert.Load()))
	ch <- prometheus.MustNewConstMetric(self.FunctionNotFound, prometheus.CounterValue, float64(report.Ingester.Errors.FunctionNotFound.Load()))
	ch <- prometheus.MustNewConstMetric(self.DerivationFailed, prometheus.CounterValue, float64(report.Ingester.Errors.DerivationFailed.Load()))
	ch <- prometheus.MustNewConstMetric(self.RollbackFailed, prometheus.CounterValue, float64(report.Ingester.Errors.RollbackFailed.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublishError, prometheus.CounterValue, float64(report.RedisPublisher.Errors.Publish.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublishPersistentFailed, prometheus.CounterValue, float64(report.RedisPublisher.Errors.PersistentFailure.Load()))
	ch <- prometheus.MustNewConstMetric(self.SweepError, prometheus.CounterValue, float64(report.Sweeper.Errors.Sweep.Load()))
}
