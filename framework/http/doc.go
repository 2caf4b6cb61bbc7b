// Package http provides request and response helpers for controllers.
//
//	req := gohttp.NewRequest(r)
//	res := gohttp.NewResponse(w)
//
//	var body CreateTicket
//	if err := req.Bind(&body); err != nil {
//	    res.BadRequest(err.Error())
//	    return
//	}
//	res.Created(store.Add(body))
//
// Every helper writes a JSON object: {"data": ...} on success and
// {"message": ...} on error.
package http
