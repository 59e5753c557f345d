package diag

// Minimal metrics surface, no-op by default; an adapter can replace
// these with real counters/gauges. Names:
//   - op_total{comp,stage,result}
//   - error_total{comp,code}
//   - op_duration_ms{comp,stage}

// IncOp increments an operation counter (result=success|error).
func IncOp(comp, stage, result string) {
}

// IncError increments an error counter by classification code.
func IncError(comp, code string) {
}

// ObserveDuration records a stage duration in milliseconds.
func ObserveDuration(comp, stage string, durMS int64) {
}
