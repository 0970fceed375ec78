/*
Package module discovers business modules on disk and moves their route
sets in and out of the registry as atomic batches.

A module is one directory under the modules root. Its .hcl route files
live in conventional subdirectories (commands/, components/, events/,
tasks/; the block types inside a file are authoritative, the directory
split is a filing convention), and an optional module.hcl manifest
carries free-form settings handed to the module's handlers at dispatch.

Loading is isolated per file: a broken route file is logged and skipped,
and the rest of the module still comes up. Reload parses the new set off
disk first and swaps it into the registry in one critical section, so
lookups always observe the complete old set or the complete new one. A
generation counter climbs with every load so the rest of the system can
tell route sets from different load cycles apart.
*/
package module
