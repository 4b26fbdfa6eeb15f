// Package postgres provides a PostgreSQL implementation of driven.LayerStore.
//
// The table layout matches existing deployments that keep raw layers in
// tl_layer (layer_id, layer, release_date), so a tlscope instance can
// serve from a database populated elsewhere. Release dates are stored as
// the first day of the release month.
package postgres
