// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

/*
Package config loads MovieBridge configuration with Koanf v2.

# Configuration Sources

Sources are layered, later layers overriding earlier ones:
 1. Built-in defaults (structs provider)
 2. An optional YAML file: the --config flag, CONFIG_PATH, ./config.yaml
    or /etc/moviebridge/config.yaml, first match wins
 3. Environment variables with flat names mapped to dotted keys

Unknown environment variables are ignored.

# Configuration Structure

  - DataConfig: TMDB CSV dumps, JSON catalog path and vote threshold
  - EmbeddingConfig: embedding provider, model and batching
  - IndexConfig: flat or HNSW similarity index
  - RecommendConfig: neighbor count, genre weight and response cache
  - TMDBConfig: poster lookups (optional, enabled by a token)
  - ServerConfig: HTTP listener, CORS and rate limiting
  - LoggingConfig: zerolog level and format

# Environment Variables

Data:
  - MOVIES_CSV: tmdb_5000_movies.csv path
  - KEYWORDS_CSV: keywords.csv path
  - CATALOG_PATH: normalized JSON catalog (default: data/catalog.json)
  - MIN_VOTES: minimum vote_count kept (default: 1000)
  - CATALOG_REFRESH_INTERVAL: rebuild the snapshot this often while serving (default: 0, build once)

Embedding:
  - EMBEDDING_PROVIDER: hugot, openai or hash (default: hugot)
  - EMBEDDING_MODEL, EMBEDDING_MODEL_DIR, EMBEDDING_DIMENSIONS
  - EMBEDDING_BASE_URL, EMBEDDING_API_KEY (or OPENAI_API_KEY)
  - EMBEDDING_BATCH_SIZE, EMBEDDING_CONCURRENCY
  - EMBEDDING_CACHE_DIR, EMBEDDING_FORCE_REBUILD

Recommendation:
  - RECOMMEND_K: neighbors fetched per seed (default: 40)
  - RECOMMEND_GENRE_WEIGHT: genre bonus weight (default: 0.2)
  - RECOMMEND_DEFAULT_N: results when a request gives no n (default: 6)
  - RECOMMEND_CACHE_ENABLED, RECOMMEND_CACHE_SIZE, RECOMMEND_CACHE_TTL

TMDB:
  - TMDB_TOKEN: v4 read access token; posters are disabled without it
  - TMDB_BASE_URL, TMDB_POSTER_SIZE, TMDB_RATE_LIMIT, TMDB_CACHE_DIR

Server and logging:
  - HTTP_HOST, HTTP_PORT (default: 8080), HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT
  - CORS_ORIGINS: comma-separated allowed origins
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load("")
	if err != nil {
	    return err
	}
	logging.Init(cfg.LogConfig())
	engineCfg := cfg.RecommendEngineConfig()
*/
package config
