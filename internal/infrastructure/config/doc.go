/*
Package config loads application configuration from environment variables.

Every setting has a default, so the server starts with an in-memory store and
generation disabled when nothing is set:

	STORE_BACKEND=memory|sqlite|postgres|redis
	GENERATION_BACKEND=disabled|gemini|remote

Backend-specific settings (POSTGRES_URL, GENERATION_URL) are checked by
Validate.
*/
package config
