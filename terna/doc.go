// Copyright 2023 Gridscope

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package terna implements a client for the Terna Transparency API, the
// public data-disclosure service of the Italian electricity transmission
// system operator.
//
// Official documentation is at https://developer.terna.it/ .
//
// The API is authenticated with an API key and secret exchanged for a
// short-lived access token on every call, and each documented endpoint is a
// single HTTP GET returning a list of records. The client flattens each
// response into a table.Table: rows keyed by a Europe/Rome timestamp (or a
// year bucket for installed capacity), one column per bidding zone or
// generation type present in the response. A missing category at a given
// timestamp yields a missing cell, not a dropped row.
//
// Failures come in two kinds, both available through errors.As: RequestError
// when a request cannot be completed, carrying the HTTP status and the
// vendor's error payload for rejected requests, or the transport error when
// no response arrived at all; and SchemaError for responses whose shape does
// not match the endpoint, carrying the raw payload for diagnosis. The client
// never retries.
package terna
