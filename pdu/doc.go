/*
The package pdu implements the element framing shared by all layer 3 PDUs of the TETRA air interface,
and a declarative schema to describe PDUs as ordered lists of elements. This implementation is based on:
  [AI]  ETSI TS 100 392-2 V3.9.2 (2020-06)

The relevant chapters in [AI] are 14.7 (CMCE PDU description), 16.9 (MM PDU description) and
annex E (PDU encoding rules).

Element classes:
Type 1: mandatory, fixed position and width.
Type 2: optional, announced by a p-bit, fixed width.
Type 3: optional, announced by an m-bit, identified by a 4 bit element identifier, 11 bit length indicator.
Type 4: like type 3, followed by a 6 bit repeat count and the repeated sub-elements.

The presence of any type 2, 3 or 4 element is announced by the o-bit after the type 1 elements.
The list of type 3 and 4 elements is terminated by an m-bit set to 0.
*/
package pdu
