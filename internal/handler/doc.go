// Package handler defines the contract between the kernel and the compiled-in
// feature modules: the Func signature handlers implement, the Context a
// dispatch hands them, the Registry that maps dotted handler references to
// functions, and the Module interface a feature package implements to plug in.
//
// Go handlers are registered once at startup and never change; what hot
// reload swaps is the route configuration referring to them by name.
package handler
