// Package config loads benchmark configurations from YAML files.
//
// A file only overrides what it names; everything else keeps the defaults of
// bench.NewConfigBuilder. Example:
//
//	scheme: gpsw
//	polarity: kp
//	iterations:
//	  warmup: 2
//	  cycles: 10
//	attribute_sets:
//	  - label: first ten
//	    range: 10
//	policies:
//	  - label: 2 of 3
//	    policy:
//	      threshold: 2
//	      of: [{attr: 1}, {attr: 4}, {attr: 7}]
//	  - label: all ten
//	    policy:
//	      all_of: {range: 10}
package config
