// Package vision implements the inspection collaborators (floor-plan parsing,
// damage analysis, repair quotes, deposit deductions and lease extraction) on
// top of a multimodal chat model reached through the llm package.
//
// Replies are decoded into the wire package shapes. A damage analysis reply
// that is not JSON is interpreted with a keyword heuristic instead of failing.
// Every other undecodable reply is reported as services.ErrUnavailable so the
// session can fall back or mark the operation failed.
package vision
