// Copyright 2026 The mdstore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package draft composes plain-text drafts and persists them through
// the storage engine.  Flag meanings are a convention of this layer,
// not of the engine.
package draft

import (
	"bytes"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/pkg/errors"

	"github.com/d-lightsey/mdstore/internal/maildir"
)

// FlagDraft marks a stored message as a draft.
const FlagDraft = 'D'

// Draft is an unsent plain-text message.
type Draft struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Compose renders the draft as a flat RFC 822 message with a generated
// Message-Id.
func (d Draft) Compose() ([]byte, error) {
	var h mail.Header
	h.SetDate(time.Now())
	h.SetSubject(d.Subject)
	if d.From != "" {
		h.SetAddressList("From", []*mail.Address{{Address: d.From}})
	}
	to := make([]*mail.Address, 0, len(d.To))
	for _, addr := range d.To {
		to = append(to, &mail.Address{Address: addr})
	}
	if len(to) > 0 {
		h.SetAddressList("To", to)
	}
	if err := h.GenerateMessageID(); err != nil {
		return nil, errors.Wrap(err, "unable to generate draft message id")
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create draft writer")
	}
	if _, err := io.WriteString(w, d.Body); err != nil {
		w.Close()
		return nil, errors.Wrap(err, "unable to write draft body")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "unable to finish draft")
	}
	return buf.Bytes(), nil
}

// Save composes the draft and delivers it into cur/ under a fresh name
// carrying the draft flag, then corrects the name's encoded size now
// that the content length is known.  It returns the stored path.
func Save(md *maildir.Maildir, d Draft) (string, error) {
	raw, err := d.Compose()
	if err != nil {
		return "", err
	}
	name := maildir.Generate(maildir.NewFlagSet(FlagDraft))
	path, err := md.Deliver(bytes.NewReader(raw), maildir.SubdirCur, name)
	if err != nil {
		return "", errors.Wrap(err, "unable to store draft")
	}
	return maildir.ReconcileSize(path), nil
}
