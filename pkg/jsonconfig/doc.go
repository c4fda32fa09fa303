// Package jsonconfig applies per-value encryption to JSON config documents.
//
// It follows the same contract as package iniconfig: string values that
// start with the keeper's sigil are ciphertext and are decrypted on demand
// by Get, everything else is returned unchanged, and Write serializes the
// raw values exactly as stored.
//
// Values are addressed by dotted paths:
//
//	{
//	  "database": {
//	    "username": "some_user",
//	    "password": "~scfg1~3f2a9c01b7de.Vh3k...",
//	    "port": 3306
//	  }
//	}
//
//	store.Get("database.password") // decrypted
//	store.Get("database.port")     // "3306"
//
// Only strings are ever encrypted. Get and RawGet return numbers, booleans
// and null in their JSON text form. Documents are decoded with
// github.com/goccy/go-json and numbers are kept verbatim.
package jsonconfig
