// Package metrics содержит Prometheus-метрики гостевой книги.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики записей гостевой книги.
var (
	// EntriesCreatedTotal количество сохранённых записей
	EntriesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "guestbook",
			Name:      "entries_created_total",
			Help:      "Total number of guestbook entries stored",
		},
	)

	// EntriesRemovedTotal количество удалённых записей
	EntriesRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "guestbook",
			Name:      "entries_removed_total",
			Help:      "Total number of guestbook entries removed",
		},
	)

	// ValidationFailuresTotal отклонённые записи по полю
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guestbook",
			Name:      "validation_failures_total",
			Help:      "Total number of rejected guestbook entries by field",
		},
		[]string{"field"},
	)

	// SideEffectFailuresTotal ошибки кеша и публикации событий, не прерывающие запрос
	SideEffectFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guestbook",
			Name:      "side_effect_failures_total",
			Help:      "Total number of cache and event publishing failures",
		},
		[]string{"kind"},
	)

	// CacheLookupsTotal обращения к кешу записей по результату
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guestbook",
			Name:      "cache_lookups_total",
			Help:      "Total number of entry cache lookups by result",
		},
		[]string{"result"},
	)
)

// Виды побочных эффектов для SideEffectFailuresTotal.
const (
	KindCacheSet        = "cache_set"
	KindCacheGet        = "cache_get"
	KindCacheInvalidate = "cache_invalidate"
	KindPublish         = "publish"
)

// RecordEntryCreated учитывает сохранённую запись.
func RecordEntryCreated() {
	EntriesCreatedTotal.Inc()
}

// RecordEntriesRemoved учитывает удалённые записи.
func RecordEntriesRemoved(count int) {
	if count > 0 {
		EntriesRemovedTotal.Add(float64(count))
	}
}

// RecordValidationFailure учитывает отклонённую запись по полю field.
func RecordValidationFailure(field string) {
	ValidationFailuresTotal.WithLabelValues(field).Inc()
}

// RecordSideEffectFailure учитывает сбой побочного действия kind.
func RecordSideEffectFailure(kind string) {
	SideEffectFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordCacheLookup учитывает попадание или промах кеша.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(result).Inc()
}
