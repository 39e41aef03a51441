/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package xcc computes RXTE spacecraft clock corrections from a calibration table (tdc.dat).

The table is a list of records, four numbers each. A record with negative last
field is an epoch marker: it sets the subday offset (first field) and the epoch
reference (second field) for the polynomial segments that follow it. A marker
with negative subday offset terminates the table.
Every other record is a quadratic segment valid up to its last field, in days
since the subday offset of the active marker.

Supported methods include
  - reading the table through LoadTable or ParseTable
  - looking up the correction for a mission elapsed time through Evaluate
  - plugging custom instrument offset derivation through Evaluator and Deriver

The first segment (in file order) whose bound is above the reduced time wins.
Running past the last segment, or into the terminator, is not an error:
the Result simply has Found set to false and zero values.
*/
package xcc
