package elasticsearch

// DefaultIndexName is the index used when none is configured.
const DefaultIndexName = "abuja_catalog_listings"

// indexMapping uses keyword fields for the exact-match facets and keyword
// subfields for case-insensitive wildcard matching on text. ignore_above on
// those subfields must cover the longest value Listing validation accepts,
// or long values drop out of free-text matches.
const indexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "normalizer": {
        "folded": { "type": "custom", "filter": ["lowercase", "asciifolding"] }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":               { "type": "keyword" },
      "kind":             { "type": "keyword" },
      "vendor_id":        { "type": "keyword" },
      "name":             { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 } } },
      "slug":             { "type": "keyword" },
      "description":      { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 5000 } } },
      "category":         { "type": "keyword" },
      "location":         { "type": "keyword" },
      "price":            { "type": "long" },
      "original_price":   { "type": "long" },
      "discount_percent": { "type": "integer" },
      "rating":           { "type": "float" },
      "review_count":     { "type": "integer" },
      "sales_count":      { "type": "integer" },
      "popularity":       { "type": "double" },
      "verified":         { "type": "boolean" },
      "in_stock":         { "type": "boolean" },
      "tags":             { "type": "keyword", "normalizer": "folded" },
      "image_url":        { "type": "keyword", "index": false },
      "established_at":   { "type": "date" },
      "created_at":       { "type": "date" },
      "updated_at":       { "type": "date" }
    }
  }
}`
