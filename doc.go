/*
Package settings_wizard drives interactive configuration sessions from a
declarative schema.

A schema built with the settings_schema package is resolved into a $ref-free
tree and walked by the wizard engine. Every node is classified into an input
kind: scalar kinds become prompt requests handed to a Backend (the UI layer,
which owns all user interaction), while composite kinds (objects, lists,
dictionaries, unions) are recursed into by the engine itself. Collected values
live in a dot-separated key-path state store and come back as a nested tree.

The package ships a headless backend for scripted runs and tests; interactive
backends implement the same small Backend interface.
*/
package settings_wizard
