// Package main provides the codb command-line tool.
//
// codb opens a store from configuration (YAML file, CODB_* environment
// variables, global flags), runs one command against it and closes it:
//
//	codb demo
//	codb --backend disk --path ./data.db put greeting hello
//	codb --backend disk --path ./data.db get greeting
//	codb --backend disk --path ./data.db stats
package main
