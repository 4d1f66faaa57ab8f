package monitoring

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// MetricType 指标类型
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeHistogram MetricType = "histogram"
)

// 指标名称
const (
	MetricDispatches      = "dispatches_total"
	MetricRowsPredicted   = "rows_predicted_total"
	MetricErrors          = "errors_total"
	MetricDispatchLatency = "dispatch_latency_ms"
)

// Metric 指标
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// MetricsCollector 指标收集器
type MetricsCollector struct {
	metrics     map[string][]*Metric
	counters    map[string]float64
	metricsLock sync.RWMutex

	startTime time.Time
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics:   make(map[string][]*Metric),
		counters:  make(map[string]float64),
		startTime: time.Now(),
	}
}

// RecordMetric 记录指标
func (mc *MetricsCollector) RecordMetric(metric *Metric) {
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()

	metric.Timestamp = time.Now()

	if metric.Type == MetricTypeCounter {
		mc.counters[counterKey(metric.Name, metric.Labels)] += metric.Value
		return
	}

	mc.metrics[metric.Name] = append(mc.metrics[metric.Name], metric)

	// 限制历史大小（保留最近1000个）
	if len(mc.metrics[metric.Name]) > 1000 {
		mc.metrics[metric.Name] = mc.metrics[metric.Name][100:]
	}
}

// IncrCounter 增加计数器
func (mc *MetricsCollector) IncrCounter(name string, value float64, labels map[string]string) {
	mc.RecordMetric(&Metric{
		Name:   name,
		Type:   MetricTypeCounter,
		Value:  value,
		Labels: labels,
	})
}

// RecordHistogram 记录直方图样本
func (mc *MetricsCollector) RecordHistogram(name string, value float64, labels map[string]string) {
	mc.RecordMetric(&Metric{
		Name:   name,
		Type:   MetricTypeHistogram,
		Value:  value,
		Labels: labels,
	})
}

// Counter 读取计数器
func (mc *MetricsCollector) Counter(name string, labels map[string]string) float64 {
	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()
	return mc.counters[counterKey(name, labels)]
}

// RecordDispatch 记录一次成功预测
func (mc *MetricsCollector) RecordDispatch(source string, rows int, elapsed time.Duration) {
	labels := map[string]string{"source": source}
	mc.IncrCounter(MetricDispatches, 1, labels)
	mc.IncrCounter(MetricRowsPredicted, float64(rows), labels)
	mc.RecordHistogram(MetricDispatchLatency, float64(elapsed.Microseconds())/1000, labels)
}

// RecordError 记录一次失败交互
func (mc *MetricsCollector) RecordError(kind string) {
	mc.IncrCounter(MetricErrors, 1, map[string]string{"kind": kind})
}

// GetMetricSummary 获取直方图摘要
func (mc *MetricsCollector) GetMetricSummary(name string) (map[string]interface{}, error) {
	mc.metricsLock.RLock()
	metrics, ok := mc.metrics[name]
	values := make([]float64, len(metrics))
	for i, m := range metrics {
		values[i] = m.Value
	}
	mc.metricsLock.RUnlock()

	if !ok {
		return nil, fmt.Errorf("metric %s not found", name)
	}
	if len(values) == 0 {
		return map[string]interface{}{"count": 0}, nil
	}

	summary := map[string]interface{}{
		"name":   name,
		"count":  len(values),
		"latest": values[len(values)-1],
	}
	sum, min, max := 0.0, values[0], values[0]
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	summary["min"] = min
	summary["max"] = max
	summary["average"] = sum / float64(len(values))
	return summary, nil
}

// Snapshot 导出全部计数器、延迟摘要和运行时信息
func (mc *MetricsCollector) Snapshot() map[string]interface{} {
	mc.metricsLock.RLock()
	counters := make(map[string]float64, len(mc.counters))
	for k, v := range mc.counters {
		counters[k] = v
	}
	mc.metricsLock.RUnlock()

	snapshot := map[string]interface{}{
		"counters": counters,
		"uptime":   mc.GetUptime().String(),
		"system":   mc.GetSystemStats(),
	}
	if latency, err := mc.GetMetricSummary(MetricDispatchLatency); err == nil {
		snapshot["latency"] = latency
	}
	return snapshot
}

// GetUptime 获取运行时间
func (mc *MetricsCollector) GetUptime() time.Duration {
	return time.Since(mc.startTime)
}

// GetSystemStats 获取系统统计
func (mc *MetricsCollector) GetSystemStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"goroutines": runtime.NumGoroutine(),
		"heap_alloc": m.HeapAlloc,
		"gc_count":   m.NumGC,
		"num_cpu":    runtime.NumCPU(),
	}
}

func counterKey(name string, labels map[string]string) string {
	key := name
	for _, k := range []string{"source", "kind"} {
		if v, ok := labels[k]; ok {
			key += fmt.Sprintf(`{%s="%s"}`, k, v)
		}
	}
	return key
}
