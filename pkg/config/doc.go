// Package config loads env-tagged configuration structs from the
// process environment, reading a .env file once per process when one is
// present. Twelve-factor companion to the per-package Config types
// (session.Config, cookie.Config, docstore.MongoConfig, ...).
package config
