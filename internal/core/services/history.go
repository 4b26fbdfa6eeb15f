package services

import (
	"sort"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

// History reconstructs the changelog of a named function or object from
// its occurrences across all layers.
//
// Occurrences are walked newest first in adjacent (newer, older) pairs.
// Every event of a pair is attributed to the newer layer, and parameter
// diffs read from the older value to the newer one. Layers in which the
// entity is absent are skipped silently.
func (r *Registry) History(name string, kind domain.DefinitionKind) domain.HistoryResponse {
	resp := domain.HistoryResponse{Kind: kind, Name: name, Events: []domain.HistoryEvent{}}

	switch kind {
	case domain.KindFunction:
		occ := r.FunctionOccurrences(name, domain.AllLayers, 0)
		if len(occ) == 0 {
			return resp
		}
		sort.SliceStable(occ, func(i, j int) bool { return occ[i].LayerID > occ[j].LayerID })

		resp.Events = append(resp.Events, addedIn(occ[len(occ)-1].LayerID))
		for i := 0; i+1 < len(occ); i++ {
			newer, older := occ[i], occ[i+1]
			resp.Events = append(resp.Events, paramEvents(newer.LayerID, newer.Function.Parameters, older.Function.Parameters)...)
			if newer.Function.ReturnType != older.Function.ReturnType {
				resp.Events = append(resp.Events, domain.HistoryEvent{
					Kind:    domain.EventReturnTypeChanged,
					LayerID: newer.LayerID,
					Before:  older.Function.ReturnType,
					After:   newer.Function.ReturnType,
				})
			}
		}
		resp.Events = r.appendDeletedIn(resp.Events, occ[0].LayerID)
		resp.Found = true
		resp.LastFunction = &occ[0]

	case domain.KindObject:
		occ := r.ObjectOccurrences(name, domain.AllLayers, 0)
		if len(occ) == 0 {
			return resp
		}
		sort.SliceStable(occ, func(i, j int) bool { return occ[i].LayerID > occ[j].LayerID })

		resp.Events = append(resp.Events, addedIn(occ[len(occ)-1].LayerID))
		for i := 0; i+1 < len(occ); i++ {
			newer, older := occ[i], occ[i+1]
			resp.Events = append(resp.Events, paramEvents(newer.LayerID, newer.Object.Parameters, older.Object.Parameters)...)
		}
		resp.Events = r.appendDeletedIn(resp.Events, occ[0].LayerID)
		resp.Found = true
		resp.LastObject = &occ[0]
	}

	return resp
}

func addedIn(layerID int) domain.HistoryEvent {
	return domain.HistoryEvent{Kind: domain.EventAddedIn, LayerID: layerID}
}

// appendDeletedIn marks the entity deleted when its newest occurrence is
// older than the latest layer.
func (r *Registry) appendDeletedIn(events []domain.HistoryEvent, newest int) []domain.HistoryEvent {
	latest, ok := r.LatestLayerID()
	if !ok || newest == latest {
		return events
	}
	return append(events, domain.HistoryEvent{Kind: domain.EventDeletedIn, LayerID: newest})
}

// paramEvents compares the parameter lists of two adjacent occurrences.
// Deletions come first, then changes and additions in the newer order.
func paramEvents(layerID int, newer, older []domain.Parameter) []domain.HistoryEvent {
	var events []domain.HistoryEvent

	for _, p := range older {
		if _, ok := domain.FindParameter(newer, p.Name); !ok {
			events = append(events, domain.HistoryEvent{
				Kind:    domain.EventParamDeleted,
				LayerID: layerID,
				Name:    p.Name,
			})
		}
	}

	for _, p := range newer {
		prev, ok := domain.FindParameter(older, p.Name)
		if !ok {
			events = append(events, domain.HistoryEvent{
				Kind:      domain.EventParamAdded,
				LayerID:   layerID,
				Name:      p.Name,
				ParamType: p.Type,
			})
			continue
		}
		if diffs := prev.Diff(p); len(diffs) > 0 {
			events = append(events, domain.HistoryEvent{
				Kind:    domain.EventParamChanged,
				LayerID: layerID,
				Name:    p.Name,
				Diffs:   diffs,
			})
		}
	}

	return events
}
