/*
Package middleware ships the stock gates every dispatch runs through and a
name registry for the extras route files opt into.

The stock gates read their knobs from the route's Gate and pass untouched
when a knob is zero, so one base chain serves every route. A denial is not
an error: the gate answers the caller ephemerally and short-circuits the
chain. Extras resolved through the Registry run inside the stock gates, so
a denied dispatch never reaches them.

Registry names are flat lowercase identifiers. Compiled-in modules that
register their own middleware pick names that do not collide; a collision
panics at startup wiring.
*/
package middleware
