// Package definition loads a pipeline definition document and validates it
// into an ordered list of element specifications.
//
// A definition is a single top-level collection (named "elements" unless
// configured otherwise) holding an ordered list of records:
//
//	elements = [
//	  {
//	    name   = "DataReader"
//	    inputs = { directory_data_video = "./data/input" }
//	    outputs = { directory_extracted_frames = "./data/frames" }
//	    settings = { frame_file_name_format = "%08d" }
//	  },
//	]
//
// HCL documents (.hcl) and YAML documents (.yml, .yaml, .json) are supported.
// Decoding is format specific; validation is shared, so both formats accept
// and reject exactly the same definitions. Record order is execution order.
package definition
